package model

// Schedule maps every queue to its outage window for one date. The key set is
// always exactly the Groups catalog; an empty value means no data was
// extracted for that queue.
type Schedule map[Group]string

// NewSchedule returns a schedule with every catalog queue set to the empty
// window.
func NewSchedule() Schedule {
	s := make(Schedule, len(Groups))
	for _, g := range Groups {
		s[g] = ""
	}
	return s
}

// Clone returns an independent copy of s.
func (s Schedule) Clone() Schedule {
	c := make(Schedule, len(s))
	for g, w := range s {
		c[g] = w
	}
	return c
}

// Equal reports whether both schedules carry byte-identical windows for every
// catalog queue. Windows are compared literally, without whitespace or
// punctuation normalization.
func (s Schedule) Equal(o Schedule) bool {
	for _, g := range Groups {
		if s[g] != o[g] {
			return false
		}
	}
	return true
}

// Empty reports whether no queue carries a window.
func (s Schedule) Empty() bool {
	for _, g := range Groups {
		if s[g] != "" {
			return false
		}
	}
	return true
}
