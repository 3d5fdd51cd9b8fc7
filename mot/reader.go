package mot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Annotation is one parsed line of an annotation file.  Frame is 1-based and
// X, Y are the top left corner of the box.
type Annotation struct {
	Frame      int
	TrackID    int
	X          float64
	Y          float64
	Width      float64
	Height     float64
	Confidence float64
	ClassID    int
}

// ReadAnnotationFile parses the annotation file at path
func ReadAnnotationFile(path string) ([]Annotation, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	return ReadAnnotations(f)
}

// ReadAnnotations parses annotation lines from r.  Every line must have the
// ten fields of the MOT layout.
func ReadAnnotations(r io.Reader) ([]Annotation, error) {

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 10
	reader.ReuseRecord = true

	var anns []Annotation

	for {
		row, err := reader.Read()

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return anns, err
		}

		line, _ := reader.FieldPos(0)

		ann, err := parseRow(row)

		if err != nil {
			return anns, fmt.Errorf("line %d: %w", line, err)
		}

		anns = append(anns, ann)
	}

	return anns, nil
}

// parseRow converts a CSV row into an Annotation
func parseRow(row []string) (Annotation, error) {

	var a Annotation
	var err error

	ints := []struct {
		name string
		idx  int
		dst  *int
	}{
		{"frame", 0, &a.Frame},
		{"track_id", 1, &a.TrackID},
		{"class_id", 7, &a.ClassID},
	}

	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(row[f.idx]); err != nil {
			return a, fmt.Errorf("invalid %s: %w", f.name, err)
		}
	}

	floats := []struct {
		name string
		idx  int
		dst  *float64
	}{
		{"x", 2, &a.X},
		{"y", 3, &a.Y},
		{"width", 4, &a.Width},
		{"height", 5, &a.Height},
		{"confidence", 6, &a.Confidence},
	}

	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(row[f.idx], 64); err != nil {
			return a, fmt.Errorf("invalid %s: %w", f.name, err)
		}
	}

	return a, nil
}

// Report summarizes an annotation set against its sequence metadata
type Report struct {
	Rows   int
	Frames int
	Tracks int
	// OutOfRange is the number of rows whose frame falls outside
	// [1, SequenceLength]
	OutOfRange int
	// Unordered is the number of rows whose frame is lower than the row
	// before it
	Unordered int
}

// Check builds a Report for anns.  When meta is nil no range check is made.
func Check(anns []Annotation, meta *SequenceMetadata) Report {

	rep := Report{Rows: len(anns)}
	frames := make(map[int]struct{})
	tracks := make(map[int]struct{})
	prev := 0

	for _, a := range anns {

		frames[a.Frame] = struct{}{}
		tracks[a.TrackID] = struct{}{}

		if a.Frame < prev {
			rep.Unordered++
		}

		prev = a.Frame

		if meta != nil && (a.Frame < 1 || a.Frame > meta.SequenceLength) {
			rep.OutOfRange++
		}
	}

	rep.Frames = len(frames)
	rep.Tracks = len(tracks)

	return rep
}
