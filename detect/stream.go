package detect

import (
	"fmt"
	"image/color"
	"math"

	"github.com/swdee/go-rknnlite/postprocess"
	"github.com/swdee/go-rknnlite/preprocess"
	"github.com/swdee/go-rknnlite/tracker"
	"gocv.io/x/gocv"

	"github.com/gseval/draftgt/mot"
	"github.com/gseval/draftgt/video"
)

// defaultFrameRate is used for the tracker when the container reports no FPS
const defaultFrameRate = 30

var black = color.RGBA{R: 0, G: 0, B: 0, A: 255}

// Stream detects and tracks objects in the frames of one video
type Stream struct {
	e       *Engine
	capture *video.Capture
	bt      *tracker.BYTETracker
	resizer *preprocess.Resizer
	img     gocv.Mat
	rgb     gocv.Mat
	crop    gocv.Mat
}

func newStream(e *Engine, c *video.Capture) *Stream {

	fps := int(math.Round(c.Info().FPS))

	if fps <= 0 {
		fps = defaultFrameRate
	}

	return &Stream{
		e:       e,
		capture: c,
		bt: tracker.NewBYTETracker(fps, e.tracker.TrackBuffer,
			float32(e.tracker.TrackThresh), float32(e.tracker.HighThresh),
			float32(e.tracker.MatchThresh)),
		img:  gocv.NewMat(),
		rgb:  gocv.NewMat(),
		crop: gocv.NewMat(),
	}
}

// Info returns the stream properties reported by the container
func (s *Stream) Info() mot.VideoInfo {
	return s.capture.Info()
}

// Next decodes the next frame and returns its tracked detections
func (s *Stream) Next() ([]mot.DetectionRecord, bool, error) {

	if ok := s.capture.Read(&s.img); !ok {
		return nil, false, nil
	}

	frame := s.capture.Frames() - 1

	var objs []tracker.Object

	if !s.img.Empty() {

		dets, err := s.detect()

		if err != nil {
			return nil, false, fmt.Errorf("frame %d: %w", frame, err)
		}

		objs = tracker.DetectionsToObjects(filterClasses(dets, s.e.allowed))
	}

	tracks, err := s.bt.Update(objs)

	if err != nil {
		return nil, false, fmt.Errorf("error tracking frame %d: %w", frame, err)
	}

	return tracksToRecords(frame, tracks), true, nil
}

// detect runs inference on the current frame
func (s *Stream) detect() ([]postprocess.DetectResult, error) {

	if s.resizer == nil {
		s.resizer = preprocess.NewResizer(s.img.Cols(), s.img.Rows(),
			s.e.width, s.e.height)
	}

	gocv.CvtColor(s.img, &s.rgb, gocv.ColorBGRToRGB)
	s.resizer.LetterBoxResize(s.rgb, &s.crop, black)

	outputs, err := s.e.rt.Inference([]gocv.Mat{s.crop})

	if err != nil {
		return nil, fmt.Errorf("runtime inferencing failed: %w", err)
	}

	dets := s.e.yolo.DetectObjects(outputs, s.resizer).GetDetectResults()

	// free outputs allocated in C memory after post processing
	if err := outputs.Free(); err != nil {
		return nil, fmt.Errorf("error freeing outputs: %w", err)
	}

	return dets, nil
}

// Close releases the frame buffers and the video
func (s *Stream) Close() error {

	s.img.Close()
	s.rgb.Close()
	s.crop.Close()

	if s.resizer != nil {
		s.resizer.Close()
	}

	return s.capture.Close()
}
