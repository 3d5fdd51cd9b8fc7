package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gseval/draftgt/metrics"
	"github.com/gseval/draftgt/mot"
)

// Summary is the tally of a directory run.  Succeeded + Skipped + Failed
// equals the number of videos discovered.
type Summary struct {
	Dir       string
	Succeeded int
	Skipped   int
	Failed    int
	// Outputs are the annotation files written, in processing order
	Outputs []string
	Results []*Result
}

// Total returns the number of videos handled
func (s *Summary) Total() int {
	return s.Succeeded + s.Skipped + s.Failed
}

// ExitCode returns 0 when no video failed, otherwise 1
func (s *Summary) ExitCode() int {

	if s.Failed > 0 {
		return 1
	}

	return 0
}

// add tallies a video result
func (s *Summary) add(res *Result) {

	s.Results = append(s.Results, res)

	switch res.Status {
	case metrics.StatusSucceeded:
		s.Succeeded++
		s.Outputs = append(s.Outputs, res.Annotation)
	case metrics.StatusSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// RunDirectory processes every video found under dir.  Videos that already
// have an annotation file are skipped unless force is set.  A failed video
// is counted and the run moves on to the next one, no video is retried.
// Once ctx is cancelled the remaining videos are counted as failed.
func (r *Runner) RunDirectory(ctx context.Context, dir string) (*Summary, error) {

	videos, err := Discover(dir)

	if err != nil {
		return nil, err
	}

	if len(videos) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoVideos, dir)
	}

	r.logger.Printf("Found %d video files", len(videos))

	if r.outDir != "" && len(videos) > 1 {
		r.logger.Printf("Warning: all videos share %s, only the metadata of the last processed video is kept",
			filepath.Join(r.outDir, mot.SeqInfoFile))
	}

	sum := &Summary{Dir: dir}
	// claimed maps annotation paths to the video that produced them
	claimed := make(map[string]string)

	for idx, video := range videos {

		r.logger.Printf("[%d/%d] %s", idx+1, len(videos), filepath.Base(video))

		if err := ctx.Err(); err != nil {
			res := &Result{Video: video, Status: metrics.StatusFailed, Err: err}
			r.finish(ctx, res)
			sum.add(res)
			continue
		}

		output := r.OutputPath(video)

		if prev, ok := claimed[output]; ok {
			r.logger.Printf("  Warning: %s and %s share the annotation file %s",
				filepath.Base(prev), filepath.Base(video), filepath.Base(output))
		} else {
			claimed[output] = video
		}

		if !r.force && exists(output) {
			r.logger.Printf("  skipped, %s exists (use force to overwrite)", filepath.Base(output))

			res := &Result{Video: video, Annotation: output, Status: metrics.StatusSkipped}
			r.finish(ctx, res)
			sum.add(res)
			continue
		}

		res, err := r.ProcessVideo(ctx, video, output)

		if err != nil {
			r.logger.Printf("  failed: %v", err)
		}

		sum.add(res)
	}

	return sum, nil
}

// exists reports if a file is present at path
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
