// Package diff decides whether a freshly parsed schedule is a first
// publication, a no-op or a partial revision of the stored schedule for the
// same date, and computes the changed fields.
package diff

import "github.com/akostiuk/zoewatch/core/model"

// Outcome classifies a fresh schedule against the stored one.
type Outcome int

const (
	// FirstPublication means no schedule was stored for the date yet.
	FirstPublication Outcome = iota
	// NoChange means the fresh schedule is identical to the stored one.
	// Callers must not write or notify on this outcome.
	NoChange
	// PartialUpdate means at least one queue's window differs.
	PartialUpdate
)

func (o Outcome) String() string {
	switch o {
	case FirstPublication:
		return "first_publication"
	case NoChange:
		return "no_change"
	default:
		return "partial_update"
	}
}

// Result couples the outcome with the changed queues. Changed maps every
// differing queue to its fresh window; it holds the full schedule on
// FirstPublication and is empty on NoChange.
type Result struct {
	Outcome Outcome
	Changed map[model.Group]string
}

// Groups returns the changed queues in catalog order.
func (r Result) Groups() []model.Group {
	var gs []model.Group
	for _, g := range model.Groups {
		if _, ok := r.Changed[g]; ok {
			gs = append(gs, g)
		}
	}
	return gs
}

// Classify compares fresh against the stored schedule for the same date.
// A nil stored schedule means the date was never published. Windows are
// compared by exact string equality: the source's literal comparison contract
// is kept, so formatting noise such as dash variants does trigger
// PartialUpdate. That fragility is accepted rather than hidden behind
// normalization.
func Classify(fresh model.Schedule, stored model.Schedule) Result {
	if stored == nil {
		changed := make(map[model.Group]string, len(model.Groups))
		for _, g := range model.Groups {
			changed[g] = fresh[g]
		}
		return Result{Outcome: FirstPublication, Changed: changed}
	}

	changed := make(map[model.Group]string)
	for _, g := range model.Groups {
		if fresh[g] != stored[g] {
			changed[g] = fresh[g]
		}
	}
	if len(changed) == 0 {
		return Result{Outcome: NoChange, Changed: changed}
	}
	return Result{Outcome: PartialUpdate, Changed: changed}
}
