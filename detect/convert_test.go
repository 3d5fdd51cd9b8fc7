package detect

import (
	"testing"

	"github.com/swdee/go-rknnlite/postprocess"
	"github.com/swdee/go-rknnlite/tracker"

	"github.com/gseval/draftgt/mot"
)

func TestTracksToRecords(t *testing.T) {

	tr := tracker.NewSTrack(tracker.NewRect(10, 20, 30, 40), 0.75, 1, 2)
	tr.Activate(5, 7)

	got := tracksToRecords(4, []*tracker.STrack{tr})

	want := mot.DetectionRecord{
		FrameIndex: 4,
		TrackID:    7,
		CenterX:    25,
		CenterY:    40,
		Width:      30,
		Height:     40,
		Confidence: 0.75,
		ClassID:    2,
	}

	if len(got) != 1 || got[0] != want {
		t.Fatalf("Expected %+v, got %+v", want, got)
	}

	// converting back to the top left corner gives the tracked box
	x, y := got[0].TopLeft()

	if x != 10 || y != 20 {
		t.Errorf("Expected top left 10,20 got %v,%v", x, y)
	}
}

func TestTracksToRecordsEmpty(t *testing.T) {

	got := tracksToRecords(0, nil)

	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non nil slice, got %v", got)
	}
}

func TestFilterClasses(t *testing.T) {

	dets := func() []postprocess.DetectResult {
		return []postprocess.DetectResult{
			{Class: 0, Probability: 0.9, ID: 1},
			{Class: 2, Probability: 0.8, ID: 2},
			{Class: 3, Probability: 0.7, ID: 3},
			{Class: 2, Probability: 0.6, ID: 4},
		}
	}

	tests := []struct {
		name    string
		allowed map[int]bool
		wantIDs []int64
	}{
		{"all", nil, []int64{1, 2, 3, 4}},
		{"ground crew", map[int]bool{2: true}, []int64{2, 4}},
		{"none matching", map[int]bool{1: true}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			got := filterClasses(dets(), tc.allowed)

			if len(got) != len(tc.wantIDs) {
				t.Fatalf("Expected %d detections, got %d", len(tc.wantIDs), len(got))
			}

			for i, det := range got {
				if det.ID != tc.wantIDs[i] {
					t.Errorf("Expected ID %d at %d, got %d", tc.wantIDs[i], i, det.ID)
				}
			}
		})
	}
}
