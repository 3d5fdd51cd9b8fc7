package mot

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// placeholders are the two trailing fields of every annotation line kept for
// compatibility with the MOT Challenge ground truth layout
const placeholders = ",-1,-1\n"

// AppendLine renders the annotation line of the given record onto dst.
// The layout is
//
//	frame_index,track_id,x1,y1,w,h,confidence,class_id,-1,-1
//
// where frame_index is 1-based and x1, y1 are the top left corner of the box.
// Values are not validated.
func AppendLine(dst []byte, d DetectionRecord) []byte {

	x1, y1 := d.TopLeft()

	dst = strconv.AppendInt(dst, int64(d.FrameIndex)+1, 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(d.TrackID), 10)

	for _, v := range [...]float64{x1, y1, d.Width, d.Height, d.Confidence} {
		dst = append(dst, ',')
		dst = strconv.AppendFloat(dst, v, 'f', 2, 64)
	}

	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(d.ClassID), 10)

	return append(dst, placeholders...)
}

// FormatLine returns the newline terminated annotation line of a record
func FormatLine(d DetectionRecord) string {
	return string(AppendLine(nil, d))
}

// Encoder writes annotation lines to an io.Writer in the order records are
// given to it
type Encoder struct {
	w     io.Writer
	buf   []byte
	count int
}

// NewEncoder returns an Encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		buf: make([]byte, 0, 96),
	}
}

// Encode writes the line for a single record
func (e *Encoder) Encode(d DetectionRecord) error {

	e.buf = AppendLine(e.buf[:0], d)

	if _, err := e.w.Write(e.buf); err != nil {
		return err
	}

	e.count++
	return nil
}

// Count returns the number of lines written so far
func (e *Encoder) Count() int {
	return e.count
}

// Stats are the totals of a single WriteAnnotations run
type Stats struct {
	// Records is the number of annotation lines written
	Records int
	// Frames is the number of frames pulled from the source, including
	// frames without any detections
	Frames int
}

// WriteAnnotations drains src and writes one annotation line per detection
// record to dest, returning the number of lines written.  An empty source
// produces an empty file.
//
// Any existing file at dest is replaced.  Lines are streamed into a temporary
// file in the same directory which is renamed onto dest only once the source
// is exhausted, so dest never holds a partially written annotation set.
func WriteAnnotations(src FrameSource, dest string) (int, error) {
	st, err := WriteAnnotationsStats(src, dest)
	return st.Records, err
}

// WriteAnnotationsStats is WriteAnnotations returning frame totals as well
func WriteAnnotationsStats(src FrameSource, dest string) (Stats, error) {

	var st Stats

	out, err := createAtomic(dest)

	if err != nil {
		return st, err
	}

	committed := false

	defer func() {
		if !committed {
			out.abort()
		}
	}()

	bw := bufio.NewWriter(out.f)
	enc := NewEncoder(bw)

	for {
		recs, ok, err := src.Next()

		if err != nil {
			st.Records = enc.Count()
			return st, fmt.Errorf("error reading frame %d: %w", st.Frames, err)
		}

		if !ok {
			break
		}

		st.Frames++

		for _, rec := range recs {
			if err := enc.Encode(rec); err != nil {
				st.Records = enc.Count()
				return st, fsError("write", dest, err)
			}
		}

		// hand each completed frame to the OS
		if err := bw.Flush(); err != nil {
			st.Records = enc.Count()
			return st, fsError("write", dest, err)
		}
	}

	st.Records = enc.Count()

	if err := out.commit(); err != nil {
		return st, err
	}

	committed = true
	return st, nil
}
