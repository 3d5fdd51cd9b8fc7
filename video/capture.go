// Package video reads frames and stream properties from video files using
// OpenCV.
package video

import (
	"errors"
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"github.com/gseval/draftgt/mot"
)

// ErrNotOpened is returned when OpenCV can not open the video container
var ErrNotOpened = errors.New("unable to open video")

// Capture reads frames sequentially from a video file
type Capture struct {
	vc   *gocv.VideoCapture
	info mot.VideoInfo
	// frames is the number of frames read so far
	frames int
}

// Open opens the video file at path for reading
func Open(path string) (*Capture, error) {

	vc, err := gocv.VideoCaptureFile(path)

	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrNotOpened, path, err)
	}

	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w %s", ErrNotOpened, path)
	}

	return &Capture{
		vc:   vc,
		info: readInfo(vc),
	}, nil
}

// readInfo gets the stream properties from the container
func readInfo(vc *gocv.VideoCapture) mot.VideoInfo {

	fps := vc.Get(gocv.VideoCaptureFPS)

	if math.IsNaN(fps) || fps < 0 {
		fps = 0
	}

	return mot.VideoInfo{
		Width:      int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(vc.Get(gocv.VideoCaptureFrameHeight)),
		FPS:        fps,
		FrameCount: int(vc.Get(gocv.VideoCaptureFrameCount)),
	}
}

// Info returns the stream properties reported by the container
func (c *Capture) Info() mot.VideoInfo {
	return c.info
}

// Read decodes the next frame into img.  It returns false once the end of
// the stream has been reached.  A frame that decodes to an empty Mat is
// still counted.
func (c *Capture) Read(img *gocv.Mat) bool {

	if ok := c.vc.Read(img); !ok {
		return false
	}

	c.frames++

	return true
}

// Frames returns the number of frames read
func (c *Capture) Frames() int {
	return c.frames
}

// Close releases the capture
func (c *Capture) Close() error {
	return c.vc.Close()
}
