package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/gseval/draftgt/metrics"
	"github.com/gseval/draftgt/mot"
	"github.com/gseval/draftgt/notify"
)

// ErrVideoNotFound is returned when the video file does not exist
var ErrVideoNotFound = errors.New("video file does not exist")

// Video is an opened video whose frames are run through detection and
// tracking one at a time
type Video interface {
	mot.FrameSource
	// Info returns the stream properties reported by the container
	Info() mot.VideoInfo
	Close() error
}

// Opener opens videos for processing
type Opener interface {
	Open(path string) (Video, error)
}

// Notifier receives an event for every video handled
type Notifier interface {
	Notify(ctx context.Context, ev notify.Event) error
}

// Progress is told about every frame pulled from a video
type Progress interface {
	Add(n int) error
	Finish() error
}

// ProgressFunc creates the Progress for a video of total frames
type ProgressFunc func(name string, total int) Progress

// Runner generates annotation and sequence metadata files for videos
type Runner struct {
	opener   Opener
	outDir   string
	suffix   string
	force    bool
	notifier Notifier
	metrics  *metrics.Metrics
	progress ProgressFunc
	logger   *log.Logger
	runID    string
}

// Option configures a Runner
type Option func(*Runner)

// WithOutputDir writes every annotation file into dir instead of next to
// its video.  All videos then share dir/seqinfo.ini.
func WithOutputDir(dir string) Option {
	return func(r *Runner) { r.outDir = dir }
}

// WithSuffix sets the suffix appended to the video stem to name the
// annotation file, default "_gt.txt"
func WithSuffix(suffix string) Option {
	return func(r *Runner) { r.suffix = suffix }
}

// WithForce reprocesses videos that already have an annotation file
func WithForce(force bool) Option {
	return func(r *Runner) { r.force = force }
}

// WithNotifier sets the receiver of per video events
func WithNotifier(n Notifier) Option {
	return func(r *Runner) { r.notifier = n }
}

// WithMetrics records run counters into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithProgress sets the per frame progress reporter
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) { r.progress = fn }
}

// WithLogger sets the logger for progress messages
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithRunID sets the run identifier attached to events, a random UUID is
// used by default
func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

// NewRunner returns a Runner that opens videos with opener
func NewRunner(opener Opener, opts ...Option) *Runner {

	r := &Runner{
		opener:   opener,
		suffix:   "_gt.txt",
		notifier: notify.Nop{},
		metrics:  metrics.New(),
		logger:   log.New(io.Discard, "", 0),
		runID:    uuid.New().String(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RunID returns the identifier of this run
func (r *Runner) RunID() string {
	return r.runID
}

// OutputPath returns the annotation file path for a video
func (r *Runner) OutputPath(video string) string {

	name := mot.Stem(video) + r.suffix

	if r.outDir != "" {
		return filepath.Join(r.outDir, name)
	}

	return filepath.Join(filepath.Dir(video), name)
}

// Result is the outcome of a single video
type Result struct {
	Video string
	// Status is one of metrics.StatusSucceeded, StatusSkipped or StatusFailed
	Status     string
	Annotation string
	SeqInfo    string
	Info       mot.VideoInfo
	Frames     int
	Records    int
	// MeanConfidence and StdConfidence summarize the written detections
	MeanConfidence float64
	StdConfidence  float64
	Elapsed        time.Duration
	Err            error
}

// ProcessVideo runs detection and tracking over video and writes the
// annotation file to output, or the default OutputPath when output is empty,
// followed by seqinfo.ini in the same directory.  An existing annotation
// file is always replaced.
func (r *Runner) ProcessVideo(ctx context.Context, video, output string) (*Result, error) {

	if output == "" {
		output = r.OutputPath(video)
	}

	res := &Result{
		Video:      video,
		Annotation: output,
	}

	start := time.Now()
	err := r.process(ctx, res)
	res.Elapsed = time.Since(start)

	if err != nil {
		res.Status = metrics.StatusFailed
		res.Err = err
	} else {
		res.Status = metrics.StatusSucceeded
	}

	r.finish(ctx, res)

	return res, err
}

// process does the work of ProcessVideo
func (r *Runner) process(ctx context.Context, res *Result) error {

	info, err := os.Stat(res.Video)

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrVideoNotFound, res.Video)
		}
		return fmt.Errorf("error reading video file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("video path is a directory: %s", res.Video)
	}

	v, err := r.opener.Open(res.Video)

	if err != nil {
		return fmt.Errorf("unable to open video %s: %w", res.Video, err)
	}

	defer v.Close()

	res.Info = v.Info()

	r.logger.Printf("Processing video: %s", filepath.Base(res.Video))
	r.logger.Printf("  output: %s", res.Annotation)
	r.logger.Printf("  video: %dx%d, %.1ffps, %d frames",
		res.Info.Width, res.Info.Height, res.Info.FPS, res.Info.FrameCount)

	src := &streamSource{
		ctx:   ctx,
		video: v,
	}

	if r.progress != nil {
		src.progress = r.progress(filepath.Base(res.Video), res.Info.FrameCount)
	}

	st, err := mot.WriteAnnotationsStats(src, res.Annotation)

	if src.progress != nil {
		src.progress.Finish()
	}

	res.Frames = st.Frames
	res.Records = st.Records

	if err != nil {
		return err
	}

	res.MeanConfidence, res.StdConfidence = confidenceSummary(src.confidences)

	meta := mot.NewSequenceMetadata(res.Video, res.Info)

	res.SeqInfo, err = mot.WriteSequenceMetadata(meta, filepath.Dir(res.Annotation))

	if err != nil {
		// an annotation without metadata would be skipped as done on the
		// next run
		if rmErr := os.Remove(res.Annotation); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			r.logger.Printf("  failed to remove %s: %v", res.Annotation, rmErr)
		}
		return err
	}

	r.logger.Printf("  done: %d detections over %d frames (confidence %.2f±%.2f)",
		res.Records, res.Frames, res.MeanConfidence, res.StdConfidence)

	return nil
}

// finish records metrics and sends the event of a handled video
func (r *Runner) finish(ctx context.Context, res *Result) {

	r.metrics.ObserveVideo(res.Status, res.Frames, res.Records, res.Elapsed)

	ev := notify.Event{
		RunID:      r.runID,
		Video:      res.Video,
		Status:     res.Status,
		Frames:     res.Frames,
		Records:    res.Records,
		FinishedAt: time.Now().UTC(),
	}

	switch res.Status {
	case metrics.StatusSucceeded:
		ev.AnnotationPath = res.Annotation
		ev.SeqInfoPath = res.SeqInfo
	case metrics.StatusSkipped:
		ev.AnnotationPath = res.Annotation
	case metrics.StatusFailed:
		ev.Error = res.Err.Error()
	}

	if err := r.notifier.Notify(ctx, ev); err != nil {
		r.logger.Printf("  failed to send event for %s: %v", filepath.Base(res.Video), err)
	}
}

// confidenceSummary returns the mean and standard deviation of the
// confidences
func confidenceSummary(confs []float64) (mean, std float64) {

	switch len(confs) {
	case 0:
		return 0, 0
	case 1:
		return confs[0], 0
	}

	mean, std = stat.MeanStdDev(confs, nil)

	if math.IsNaN(std) {
		std = 0
	}

	return mean, std
}

// streamSource wraps a Video to stop on context cancellation, report
// progress and collect confidences
type streamSource struct {
	ctx         context.Context
	video       Video
	progress    Progress
	confidences []float64
}

// Next pulls the next frame from the video
func (s *streamSource) Next() ([]mot.DetectionRecord, bool, error) {

	if err := s.ctx.Err(); err != nil {
		return nil, false, err
	}

	recs, ok, err := s.video.Next()

	if err != nil || !ok {
		return recs, ok, err
	}

	if s.progress != nil {
		s.progress.Add(1)
	}

	for _, rec := range recs {
		s.confidences = append(s.confidences, rec.Confidence)
	}

	return recs, true, nil
}
