package events

import (
	"time"

	"github.com/akostiuk/zoewatch/core/model"
)

// CycleEvent reports the end of one fetch cycle.
type CycleEvent struct {
	CycleID string
	Outcome string
	// Stage names the pipeline stage a skipped cycle failed at: "fetch",
	// "locate", "classify", "date" or "store". Empty for completed cycles.
	Stage    string
	Date     time.Time
	Duration time.Duration
}

// ScheduleChangedEvent reports a stored schedule being created or replaced.
type ScheduleChangedEvent struct {
	CycleID  string
	Date     time.Time
	Changed  []model.Group
	Schedule model.Schedule
}

// DeliveryEvent reports one per-recipient send attempt.
type DeliveryEvent struct {
	CycleID string
	ChatID  int64
	Group   model.Group
	Sent    bool
	Err     error
	Latency time.Duration
}
