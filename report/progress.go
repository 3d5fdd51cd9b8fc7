// Package report renders per frame progress bars and the end of run summary
// on the terminal.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/gseval/draftgt/batch"
)

// FrameBar returns a batch.ProgressFunc drawing one bar per video on w.  A
// video whose container reports no frame count gets a spinner.
func FrameBar(w io.Writer) batch.ProgressFunc {

	return func(name string, total int) batch.Progress {

		if total <= 0 {
			total = -1
		}

		return progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("frames"),
			progressbar.OptionShowIts(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
			progressbar.OptionSetDescription("[cyan]"+name+"[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}
}
