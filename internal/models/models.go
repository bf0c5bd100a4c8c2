package models

import (
	"time"
)

// PowerState is the supply state of a queue at a given instant.
type PowerState string

const (
	PowerOn  PowerState = "ON"
	PowerOff PowerState = "OFF"
)

// Article is the schedule-bearing content block selected from the source page.
type Article struct {
	Title       string `json:"title"`
	ContentText string `json:"content_text"`
}

// Schedule maps a queue identifier (e.g. "2.1") to its ordered off-periods ("HH:MM-HH:MM").
type Schedule map[string][]string

// Outage is the parsed result of one source page.
type Outage struct {
	Article Article
	Queues  Schedule
}

// QueueStatus is a snapshot of a queue relative to the evaluation instant.
type QueueStatus struct {
	Status  PowerState `json:"status"`
	NextOff *string    `json:"nextOff"`
	NextOn  *string    `json:"nextOn"`
}

// Snapshot is the cached copy of the source page.
type Snapshot struct {
	Body      string    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
}

// RefreshStatus captures the outcome of a single page refresh.
type RefreshStatus struct {
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	OK         bool      `json:"ok"`
	Bytes      int       `json:"bytes,omitempty"`
	Error      string    `json:"error,omitempty"`
}
