package mot

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// SeqInfoFile is the fixed file name of the sequence metadata file.  Only
	// one sequence can live in a directory, writing the metadata of a second
	// video into the same directory replaces the first.
	SeqInfoFile = "seqinfo.ini"
	// ImageDir is the image directory name expected by evaluation tooling
	ImageDir = "img1"
	// ImageExt is the image file extension expected by evaluation tooling
	ImageExt = ".jpg"
)

// VideoInfo are the stream properties reported by the video container
type VideoInfo struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int
}

// SequenceMetadata describes one video sequence for MOT evaluation tooling
type SequenceMetadata struct {
	// Name is the video file name without directory or extension
	Name      string
	FrameRate float64
	// SequenceLength is the frame count reported by the container, not the
	// number of frames that produced detections
	SequenceLength int
	Width          int
	Height         int
	ImageDir       string
	ImageExt       string
}

// NewSequenceMetadata builds the metadata of the given video file
func NewSequenceMetadata(videoPath string, info VideoInfo) SequenceMetadata {
	return SequenceMetadata{
		Name:           Stem(videoPath),
		FrameRate:      info.FPS,
		SequenceLength: info.FrameCount,
		Width:          info.Width,
		Height:         info.Height,
		ImageDir:       ImageDir,
		ImageExt:       ImageExt,
	}
}

// Stem returns the file name of path without its directory and extension
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Render returns the seqinfo.ini contents.  Key order and spelling are fixed.
func (m SequenceMetadata) Render() []byte {

	var b bytes.Buffer

	b.WriteString("[Sequence]\n")
	fmt.Fprintf(&b, "name=%s\n", m.Name)
	fmt.Fprintf(&b, "imDir=%s\n", m.ImageDir)
	fmt.Fprintf(&b, "frameRate=%s\n", strconv.FormatFloat(m.FrameRate, 'f', -1, 64))
	fmt.Fprintf(&b, "seqLength=%d\n", m.SequenceLength)
	fmt.Fprintf(&b, "imWidth=%d\n", m.Width)
	fmt.Fprintf(&b, "imHeight=%d\n", m.Height)
	fmt.Fprintf(&b, "imExt=%s\n", m.ImageExt)

	return b.Bytes()
}

// WriteSequenceMetadata writes seqinfo.ini into dir, creating dir when
// needed, and returns the absolute path of the written file.  An existing
// seqinfo.ini is always overwritten, never merged.
func WriteSequenceMetadata(meta SequenceMetadata, dir string) (string, error) {

	path, err := filepath.Abs(filepath.Join(dir, SeqInfoFile))

	if err != nil {
		return "", fsError("abs", dir, err)
	}

	out, err := createAtomic(path)

	if err != nil {
		return "", err
	}

	if _, err := out.f.Write(meta.Render()); err != nil {
		out.abort()
		return "", fsError("write", path, err)
	}

	if err := out.commit(); err != nil {
		return "", err
	}

	return path, nil
}

// ReadSequenceMetadata parses a seqinfo.ini file
func ReadSequenceMetadata(path string) (SequenceMetadata, error) {

	f, err := os.Open(path)

	if err != nil {
		return SequenceMetadata{}, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	return ParseSequenceMetadata(f)
}

// ParseSequenceMetadata parses seqinfo.ini contents.  Keys outside of the
// [Sequence] section and unknown keys are ignored.
func ParseSequenceMetadata(r io.Reader) (SequenceMetadata, error) {

	var m SequenceMetadata
	inSection := false
	seen := false

	scanner := bufio.NewScanner(r)

	for lineNo := 1; scanner.Scan(); lineNo++ {

		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			inSection = line == "[Sequence]"
			seen = seen || inSection
			continue
		}

		if !inSection {
			continue
		}

		key, val, ok := strings.Cut(line, "=")

		if !ok {
			return m, fmt.Errorf("line %d: expected key=value, got %q", lineNo, line)
		}

		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		var err error

		switch key {
		case "name":
			m.Name = val
		case "imDir":
			m.ImageDir = val
		case "imExt":
			m.ImageExt = val
		case "frameRate":
			m.FrameRate, err = strconv.ParseFloat(val, 64)
		case "seqLength":
			m.SequenceLength, err = strconv.Atoi(val)
		case "imWidth":
			m.Width, err = strconv.Atoi(val)
		case "imHeight":
			m.Height, err = strconv.Atoi(val)
		}

		if err != nil {
			return m, fmt.Errorf("line %d: invalid %s: %w", lineNo, key, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return m, fmt.Errorf("error reading file: %w", err)
	}

	if !seen {
		return m, fmt.Errorf("missing [Sequence] section")
	}

	return m, nil
}
