package mot

// DetectionRecord is a single tracked object in a single video frame as
// produced by the detection and tracking engine
type DetectionRecord struct {
	// FrameIndex is the 0-based index of the frame in the video stream.  The
	// annotation file is 1-based, the Encoder adds one when rendering
	FrameIndex int
	// TrackID is the identifier assigned by the tracker
	TrackID int
	// CenterX, CenterY are the box center in pixels
	CenterX float64
	CenterY float64
	// Width, Height are the box dimensions in pixels
	Width  float64
	Height float64
	// Confidence is the detection score, nominally in the range [0, 1]
	Confidence float64
	// ClassID is the line number of the class in the model labels
	ClassID int
}

// TopLeft converts the center anchored box into the top left corner used by
// the MOT format
func (d DetectionRecord) TopLeft() (x1, y1 float64) {
	return d.CenterX - d.Width/2, d.CenterY - d.Height/2
}

// FrameSource is a pull based producer of per frame detection batches.
// Next returns the detections of the next frame in stream order, a frame
// may have no detections.  ok is false once the stream is exhausted.
type FrameSource interface {
	Next() (records []DetectionRecord, ok bool, err error)
}

// SliceSource is an in memory FrameSource where each element of Frames is
// the detection batch of one frame
type SliceSource struct {
	Frames [][]DetectionRecord
	pos    int
}

// NewSliceSource returns a FrameSource over the given frame batches
func NewSliceSource(frames ...[]DetectionRecord) *SliceSource {
	return &SliceSource{Frames: frames}
}

// Next returns the next frame batch
func (s *SliceSource) Next() ([]DetectionRecord, bool, error) {

	if s.pos >= len(s.Frames) {
		return nil, false, nil
	}

	recs := s.Frames[s.pos]
	s.pos++

	return recs, true, nil
}
