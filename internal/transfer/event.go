package transfer

import (
	"time"

	"github.com/google/uuid"
)

// EventType distinguishes the three kinds of job events.
type EventType int

const (
	EventProgress EventType = iota
	EventStatus
	EventFinished
)

func (t EventType) String() string {
	switch t {
	case EventProgress:
		return "progress"
	case EventStatus:
		return "status"
	case EventFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Event is emitted by a running job. Percent is set for EventProgress, Status
// for EventStatus and Result for EventFinished, which is always the last
// event of a job.
type Event struct {
	JobID   uuid.UUID
	Kind    Kind
	Type    EventType
	Percent int
	Status  string
	Result  *Result
}

// Result is the outcome of a job.
type Result struct {
	OK        bool
	Cancelled bool
	// Message is the human-readable line to display and log.
	Message  string
	Err      error
	Bytes    int64
	Duration time.Duration
}

// Outcome is the metrics label for the result.
func (r Result) Outcome() string {
	switch {
	case r.OK:
		return "success"
	case r.Cancelled:
		return "cancelled"
	default:
		return "failure"
	}
}
