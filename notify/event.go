package notify

import (
	"encoding/json"
	"time"
)

// Event describes the outcome of processing one video
type Event struct {
	EventID string `json:"event_id"`
	RunID   string `json:"run_id"`
	Video   string `json:"video"`
	// Status is one of succeeded, skipped or failed
	Status         string    `json:"status"`
	AnnotationPath string    `json:"annotation_path,omitempty"`
	SeqInfoPath    string    `json:"seqinfo_path,omitempty"`
	Frames         int       `json:"frames"`
	Records        int       `json:"records"`
	Error          string    `json:"error,omitempty"`
	FinishedAt     time.Time `json:"finished_at"`
}

// ToJSON serializes the Event to JSON
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
