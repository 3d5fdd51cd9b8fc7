package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/gseval/draftgt/batch"
	"github.com/gseval/draftgt/config"
	"github.com/gseval/draftgt/mot"
)

func init() {
	color.NoColor = true
}

func TestParseFlagsShortAndLong(t *testing.T) {

	opts, err := parseFlags([]string{"-v", "clips", "-o", "out.txt", "-f", "-m", "a.rknn"}, io.Discard)

	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}

	if opts.video != "clips" || opts.output != "out.txt" || !opts.force || opts.model != "a.rknn" {
		t.Errorf("Unexpected options %+v", opts)
	}

	if opts.set["conf"] {
		t.Errorf("Expected conf not set")
	}

	opts, err = parseFlags([]string{"-video", "clips", "-conf", "0.3", "-out-dir", "res", "-suffix", ".txt"}, io.Discard)

	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}

	cfg := config.Default()
	opts.apply(cfg)

	if cfg.Detect.Confidence != 0.3 || cfg.Output.Dir != "res" || cfg.Output.Suffix != ".txt" {
		t.Errorf("Unexpected config %+v", cfg)
	}
}

func TestRunRejectsConfidence(t *testing.T) {

	for _, conf := range []string{"1.5", "-0.1", "NaN"} {

		var stderr bytes.Buffer

		code := run(context.Background(), []string{"-v", "missing.mp4", "-conf", conf}, io.Discard, &stderr)

		if code != 1 {
			t.Errorf("conf %s: expected exit code 1, got %d", conf, code)
		}

		if !strings.Contains(stderr.String(), "confidence threshold") {
			t.Errorf("conf %s: unexpected error output %q", conf, stderr.String())
		}
	}
}

func TestRunMissingPath(t *testing.T) {

	var stderr bytes.Buffer

	code := run(context.Background(), []string{"-v", filepath.Join(t.TempDir(), "nope")}, io.Discard, &stderr)

	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}

	if !strings.Contains(stderr.String(), "path does not exist") {
		t.Errorf("Unexpected error output %q", stderr.String())
	}
}

func TestRunMissingVideoFlag(t *testing.T) {

	if code := run(context.Background(), nil, io.Discard, io.Discard); code != 2 {
		t.Errorf("Expected exit code 2, got %d", code)
	}
}

// emptyOpener opens videos without any detections
type emptyOpener struct{}

type emptyVideo struct{}

func (emptyVideo) Next() ([]mot.DetectionRecord, bool, error) { return nil, false, nil }
func (emptyVideo) Info() mot.VideoInfo {
	return mot.VideoInfo{Width: 640, Height: 480, FPS: 25, FrameCount: 10}
}
func (emptyVideo) Close() error { return nil }

func (emptyOpener) Open(string) (batch.Video, error) { return emptyVideo{}, nil }

func TestExecuteDirectory(t *testing.T) {

	dir := t.TempDir()

	for _, name := range []string{"a.mp4", "b.webm", "b_gt.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	var stdout bytes.Buffer

	code := execute(context.Background(), batch.NewRunner(emptyOpener{}), dir, true, "", &stdout, io.Discard)

	if code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}

	if !strings.Contains(stdout.String(), "succeeded: 1") || !strings.Contains(stdout.String(), "skipped:   1") {
		t.Errorf("Unexpected summary:\n%s", stdout.String())
	}
}

func TestExecuteEmptyDirectory(t *testing.T) {

	var stderr bytes.Buffer

	code := execute(context.Background(), batch.NewRunner(emptyOpener{}), t.TempDir(), true, "", io.Discard, &stderr)

	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}

	if !strings.Contains(stderr.String(), "no video files found") {
		t.Errorf("Unexpected error output %q", stderr.String())
	}
}

func TestExecuteSingleFile(t *testing.T) {

	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	output := filepath.Join(dir, "custom", "clip.txt")

	if err := os.WriteFile(video, nil, 0644); err != nil {
		t.Fatal(err)
	}

	code := execute(context.Background(), batch.NewRunner(emptyOpener{}), video, false, output, io.Discard, io.Discard)

	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}

	if _, err := os.Stat(filepath.Join(dir, "custom", mot.SeqInfoFile)); err != nil {
		t.Errorf("Expected seqinfo.ini next to the output: %v", err)
	}
}

func TestVerify(t *testing.T) {

	dir := t.TempDir()
	ann := filepath.Join(dir, "clip_gt.txt")

	data := "1,1,10.00,20.00,30.00,40.00,0.90,0,-1,-1\n" +
		"2,1,11.00,20.00,30.00,40.00,0.80,0,-1,-1\n" +
		"2,2,50.00,60.00,10.00,10.00,0.70,3,-1,-1\n"

	if err := os.WriteFile(ann, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	meta := mot.NewSequenceMetadata("clip.mp4", mot.VideoInfo{Width: 640, Height: 480, FPS: 25, FrameCount: 2})

	if _, err := mot.WriteSequenceMetadata(meta, dir); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer

	if code := verify([]string{ann}, &stdout, io.Discard); code != 0 {
		t.Fatalf("Expected exit code 0, got %d:\n%s", code, stdout.String())
	}

	if !strings.Contains(stdout.String(), "3 rows, 2 frames, 2 tracks") {
		t.Errorf("Unexpected report:\n%s", stdout.String())
	}

	// a sequence shorter than the annotations is reported
	short := mot.NewSequenceMetadata("clip.mp4", mot.VideoInfo{Width: 640, Height: 480, FPS: 25, FrameCount: 1})
	other := t.TempDir()

	seq, err := mot.WriteSequenceMetadata(short, other)

	if err != nil {
		t.Fatal(err)
	}

	stdout.Reset()

	if code := verify([]string{ann, seq}, &stdout, io.Discard); code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}

	if !strings.Contains(stdout.String(), "frames outside sequence: 2") {
		t.Errorf("Unexpected report:\n%s", stdout.String())
	}
}

func TestVerifyUsage(t *testing.T) {

	if code := verify(nil, io.Discard, io.Discard); code != 2 {
		t.Errorf("Expected exit code 2, got %d", code)
	}
}
