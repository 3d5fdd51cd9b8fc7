package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/gseval/draftgt/batch"
	"github.com/gseval/draftgt/mot"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	bold   = color.New(color.Bold)
)

// PrintResult writes the outcome of a single video
func PrintResult(w io.Writer, res *batch.Result) {

	if res.Err != nil {
		red.Fprintf(w, "Failed: %s: %v\n", filepath.Base(res.Video), res.Err)
		return
	}

	green.Fprintf(w, "Done: %s\n", filepath.Base(res.Video))
	fmt.Fprintf(w, "  annotation: %s (%d detections, %d frames)\n", res.Annotation, res.Records, res.Frames)
	fmt.Fprintf(w, "  seqinfo:    %s\n", res.SeqInfo)

	if res.Records > 0 {
		fmt.Fprintf(w, "  confidence: %.2f±%.2f\n", res.MeanConfidence, res.StdConfidence)
	}
}

// PrintSummary writes the tally of a directory run and the annotation files
// produced
func PrintSummary(w io.Writer, sum *batch.Summary) {

	bold.Fprintf(w, "\nProcessed %d videos in %s\n", sum.Total(), sum.Dir)
	green.Fprintf(w, "  succeeded: %d\n", sum.Succeeded)
	yellow.Fprintf(w, "  skipped:   %d\n", sum.Skipped)

	if sum.Failed > 0 {
		red.Fprintf(w, "  failed:    %d\n", sum.Failed)
	} else {
		fmt.Fprintf(w, "  failed:    %d\n", sum.Failed)
	}

	for _, res := range sum.Results {
		if res.Err != nil {
			red.Fprintf(w, "    %s: %v\n", filepath.Base(res.Video), res.Err)
		}
	}

	if len(sum.Outputs) == 0 {
		return
	}

	fmt.Fprintln(w, "Generated files:")

	dirs := make(map[string]bool)

	for _, out := range sum.Outputs {

		fmt.Fprintf(w, "  %s\n", out)

		dir := filepath.Dir(out)

		if !dirs[dir] {
			dirs[dir] = true
			fmt.Fprintf(w, "  %s\n", filepath.Join(dir, mot.SeqInfoFile))
		}
	}
}
