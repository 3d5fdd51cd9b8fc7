package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gseval/draftgt/mot"
)

// verify parses an annotation file and its seqinfo.ini back and reports on
// them.  Without an explicit seqinfo path the seqinfo.ini next to the
// annotation file is used if present.
func verify(args []string, stdout, stderr io.Writer) int {

	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(stderr, "Usage: draftgt verify <annotation> [seqinfo]")
		return 2
	}

	anns, err := mot.ReadAnnotationFile(args[0])

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	seqPath := filepath.Join(filepath.Dir(args[0]), mot.SeqInfoFile)
	explicit := len(args) == 2

	if explicit {
		seqPath = args[1]
	}

	var meta *mot.SequenceMetadata

	m, err := mot.ReadSequenceMetadata(seqPath)

	switch {
	case err == nil:
		meta = &m
	case !explicit && errors.Is(err, os.ErrNotExist):
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	rep := mot.Check(anns, meta)

	fmt.Fprintf(stdout, "%s: %d rows, %d frames, %d tracks\n", args[0], rep.Rows, rep.Frames, rep.Tracks)

	if meta != nil {
		fmt.Fprintf(stdout, "%s: %s %dx%d, %g fps, %d frames\n", seqPath, meta.Name,
			meta.Width, meta.Height, meta.FrameRate, meta.SequenceLength)
		fmt.Fprintf(stdout, "frames outside sequence: %d\n", rep.OutOfRange)
	}

	fmt.Fprintf(stdout, "rows out of frame order: %d\n", rep.Unordered)

	if rep.OutOfRange > 0 || rep.Unordered > 0 {
		return 1
	}

	return 0
}
