package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveVideo(t *testing.T) {

	m := New()

	m.ObserveVideo(StatusSucceeded, 100, 250, 2*time.Second)
	m.ObserveVideo(StatusSucceeded, 50, 10, time.Second)
	m.ObserveVideo(StatusSkipped, 0, 0, 0)
	m.ObserveVideo(StatusFailed, 7, 3, time.Second)

	if got := m.VideosSucceeded.Load(); got != 2 {
		t.Errorf("Expected 2 succeeded, got %d", got)
	}

	if got := m.VideosSkipped.Load(); got != 1 {
		t.Errorf("Expected 1 skipped, got %d", got)
	}

	if got := m.FramesProcessed.Load(); got != 157 {
		t.Errorf("Expected 157 frames, got %d", got)
	}

	if got := m.RecordsWritten.Load(); got != 260 {
		t.Errorf("Expected 260 records, failed video excluded, got %d", got)
	}

	// skipped videos are not timed
	if got := testutil.CollectAndCount(m.Registry(), "draftgt_video_duration_seconds"); got != 1 {
		t.Errorf("Expected one histogram series, got %d", got)
	}

	expected := `
# HELP draftgt_annotation_records_total Total annotation lines written
# TYPE draftgt_annotation_records_total counter
draftgt_annotation_records_total 260
`

	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"draftgt_annotation_records_total"); err != nil {
		t.Errorf("Unexpected metric output: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {

	m := New()
	m.ObserveVideo(StatusFailed, 1, 0, time.Second)

	path := filepath.Join(t.TempDir(), "draftgt.prom")

	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)

	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}

	if !strings.Contains(string(data), `draftgt_videos_total{status="failed"} 1`) {
		t.Errorf("Expected failed video counter in textfile, got:\n%s", data)
	}
}
