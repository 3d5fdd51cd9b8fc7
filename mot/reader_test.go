package mot

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestReadAnnotationsRoundTrip(t *testing.T) {

	dest := filepath.Join(t.TempDir(), "out.txt")
	frames := genFrames(40)

	n, err := WriteAnnotations(NewSliceSource(frames...), dest)

	if err != nil {
		t.Fatalf("WriteAnnotations failed: %v", err)
	}

	anns, err := ReadAnnotationFile(dest)

	if err != nil {
		t.Fatalf("ReadAnnotationFile failed: %v", err)
	}

	if len(anns) != n {
		t.Fatalf("Expected %d annotations, got %d", n, len(anns))
	}

	meta := SequenceMetadata{SequenceLength: 40}
	rep := Check(anns, &meta)

	if rep.OutOfRange != 0 || rep.Unordered != 0 {
		t.Errorf("Expected clean report, got %+v", rep)
	}

	// every frame with i%4 != 0 has detections
	if rep.Frames != 30 {
		t.Errorf("Expected 30 frames with detections, got %d", rep.Frames)
	}

	if rep.Tracks != 3 {
		t.Errorf("Expected 3 distinct tracks, got %d", rep.Tracks)
	}
}

func TestCheckOutOfRangeAndUnordered(t *testing.T) {

	in := "3,1,0.00,0.00,1.00,1.00,0.50,0,-1,-1\n" +
		"2,1,0.00,0.00,1.00,1.00,0.50,0,-1,-1\n" +
		"11,2,0.00,0.00,1.00,1.00,0.50,1,-1,-1\n"

	anns, err := ReadAnnotations(strings.NewReader(in))

	if err != nil {
		t.Fatalf("ReadAnnotations failed: %v", err)
	}

	rep := Check(anns, &SequenceMetadata{SequenceLength: 10})

	if rep.Unordered != 1 {
		t.Errorf("Expected 1 unordered row, got %d", rep.Unordered)
	}

	if rep.OutOfRange != 1 {
		t.Errorf("Expected 1 out of range row, got %d", rep.OutOfRange)
	}
}

func TestReadAnnotationsInvalid(t *testing.T) {

	tests := []string{
		"1,2,3\n",
		"x,1,0.00,0.00,1.00,1.00,0.50,0,-1,-1\n",
		"1,1,0.00,abc,1.00,1.00,0.50,0,-1,-1\n",
	}

	for _, in := range tests {
		if _, err := ReadAnnotations(strings.NewReader(in)); err == nil {
			t.Errorf("Expected error for %q", in)
		}
	}
}
