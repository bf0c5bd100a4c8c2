package models

import "time"

// TimelinePoint represents a single bucket of a queue's day timeline.
type TimelinePoint struct {
	ClassName  string           `json:"className"`
	Label      string           `json:"label"`
	Start      time.Time        `json:"start"`
	End        time.Time        `json:"end"`
	OffMinutes int              `json:"off_minutes"`
	Details    []TimelineDetail `json:"details,omitempty"`
}

// TimelineDetail names an off-period overlapping a bucket.
type TimelineDetail struct {
	Period string `json:"period"`
}

// QueueTimeline aggregates timeline points for a single queue.
type QueueTimeline struct {
	Queue    string          `json:"queue"`
	Timeline []TimelinePoint `json:"timeline"`
}
