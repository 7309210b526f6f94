package model

import "time"

// Class tells how an announcement title was recognized.
type Class int

const (
	// ClassUnrecognized marks a title matching no known phrasing. It carries
	// no date rule and terminates the cycle.
	ClassUnrecognized Class = iota
	// ClassNew marks a first publication of a schedule for a date.
	ClassNew
	// ClassUpdated marks a revision of an already published schedule.
	ClassUpdated
)

func (c Class) String() string {
	switch c {
	case ClassNew:
		return "new"
	case ClassUpdated:
		return "updated"
	default:
		return "unrecognized"
	}
}

// Announcement is the structured result of parsing one published post. It is
// built fresh every cycle and discarded after classification and dispatch;
// only the Schedule survives into storage.
type Announcement struct {
	// Date the schedule applies to. Zero when the title carried no parseable
	// day and month tokens.
	Date     time.Time
	Schedule Schedule
	Class    Class
}
