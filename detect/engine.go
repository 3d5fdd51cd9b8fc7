// Package detect runs YOLOv8 object detection on the Rockchip NPU and
// ByteTrack multi object tracking over video frames, producing the detection
// records written to MOT annotation files.
package detect

import (
	"fmt"
	"log"
	"strings"

	"github.com/swdee/go-rknnlite"
	"github.com/swdee/go-rknnlite/postprocess"

	"github.com/gseval/draftgt"
	"github.com/gseval/draftgt/batch"
	"github.com/gseval/draftgt/config"
	"github.com/gseval/draftgt/video"
)

// Engine holds the NPU runtime and post processor shared by all videos of a
// run.  Videos must be processed one at a time.
type Engine struct {
	rt      *rknnlite.Runtime
	yolo    *postprocess.YOLOv8
	classes draftgt.Classes
	// allowed restricts the written detections to these class IDs, nil
	// allows all classes
	allowed map[int]bool
	tracker config.TrackerConfig
	// width and height of the model input tensor
	width  int
	height int
	logger *log.Logger
}

// New loads the model and creates the Engine.  classes are the labels the
// model was trained on.
func New(cfg *config.Config, classes draftgt.Classes, logger *log.Logger) (*Engine, error) {

	if logger == nil {
		logger = log.Default()
	}

	rt, err := rknnlite.NewRuntime(cfg.Model.Path, rknnlite.NPUCoreAuto)

	if err != nil {
		return nil, fmt.Errorf("error initializing RKNN runtime: %w", err)
	}

	// leave output tensors as int8 for the YOLOv8 post processor
	rt.SetWantFloat(false)

	e := &Engine{
		rt: rt,
		yolo: postprocess.NewYOLOv8(postprocess.YOLOv8Params{
			BoxThreshold:    float32(cfg.Detect.Confidence),
			NMSThreshold:    float32(cfg.Detect.NMSThreshold),
			ObjectClassNum:  len(classes),
			MaxObjectNumber: cfg.Detect.MaxObjects,
		}),
		classes: classes,
		tracker: cfg.Tracker,
		width:   int(rt.InputAttrs()[0].Dims[1]),
		height:  int(rt.InputAttrs()[0].Dims[2]),
		logger:  logger,
	}

	if cfg.Detect.Classes != "" {

		ids, err := classes.IDs(cfg.Detect.Classes)

		if err != nil {
			rt.Close()
			return nil, err
		}

		e.allowed = make(map[int]bool, len(ids))
		names := make([]string, 0, len(ids))

		for _, id := range ids {
			e.allowed[id] = true
			names = append(names, e.classes.Name(id))
		}

		logger.Printf("Restricting annotations to classes: %s", strings.Join(names, ", "))
	}

	logger.Printf("Model loaded: %s, input %dx%d, %d classes",
		cfg.Model.Path, e.width, e.height, len(classes))

	return e, nil
}

// Open opens a video for detection and tracking.  Every video gets its own
// tracker so track IDs start over per video.
func (e *Engine) Open(path string) (batch.Video, error) {

	c, err := video.Open(path)

	if err != nil {
		return nil, err
	}

	return newStream(e, c), nil
}

// Close releases the NPU runtime
func (e *Engine) Close() error {
	return e.rt.Close()
}
