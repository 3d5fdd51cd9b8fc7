package detect

import (
	"github.com/swdee/go-rknnlite/postprocess"
	"github.com/swdee/go-rknnlite/tracker"

	"github.com/gseval/draftgt/mot"
)

// filterClasses drops detections whose class is not allowed.  A nil allowed
// set keeps everything.
func filterClasses(dets []postprocess.DetectResult, allowed map[int]bool) []postprocess.DetectResult {

	if allowed == nil {
		return dets
	}

	kept := dets[:0]

	for _, det := range dets {
		if allowed[det.Class] {
			kept = append(kept, det)
		}
	}

	return kept
}

// tracksToRecords converts the tracker output of a frame into detection
// records, boxes are converted from top left to center coordinates
func tracksToRecords(frame int, tracks []*tracker.STrack) []mot.DetectionRecord {

	recs := make([]mot.DetectionRecord, 0, len(tracks))

	for _, tr := range tracks {

		rect := tr.GetRect()
		w := float64(rect.Width())
		h := float64(rect.Height())

		recs = append(recs, mot.DetectionRecord{
			FrameIndex: frame,
			TrackID:    tr.GetTrackID(),
			CenterX:    float64(rect.TLX()) + w/2,
			CenterY:    float64(rect.TLY()) + h/2,
			Width:      w,
			Height:     h,
			Confidence: float64(tr.GetScore()),
			ClassID:    tr.GetLabel(),
		})
	}

	return recs
}
