// Package dispatch turns a classification result into per-recipient
// notifications and delivers them with per-recipient failure isolation.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/akostiuk/zoewatch/core/diff"
	"github.com/akostiuk/zoewatch/core/logger"
	"github.com/akostiuk/zoewatch/core/model"
	"github.com/akostiuk/zoewatch/core/storage"
)

// Delivery is one planned notification: a recipient and its rendered payload.
type Delivery struct {
	ChatID int64
	Group  model.Group
	Text   string
}

// Planner computes the deliveries owed for a classification result. It never
// performs delivery itself.
type Planner struct {
	dir storage.SubscriberDirectory
	log logger.Logger
}

// NewPlanner creates a Planner reading recipients from dir.
func NewPlanner(dir storage.SubscriberDirectory, log logger.Logger) (*Planner, error) {
	if dir == nil {
		return nil, fmt.Errorf("dispatch: nil directory provided to NewPlanner")
	}
	return &Planner{dir: dir, log: log}, nil
}

// Plan lists the (recipient, payload) pairs owed for res.
//
// FirstPublication targets every subscriber with an assigned queue, rendering
// that subscriber's window from the full schedule. PartialUpdate targets only
// subscribers whose queue changed, rendering the fresh window. NoChange plans
// nothing. Ordering across recipients carries no meaning.
func (p *Planner) Plan(ctx context.Context, date time.Time, res diff.Result, sched model.Schedule) ([]Delivery, error) {
	switch res.Outcome {
	case diff.FirstPublication:
		subs, err := p.dir.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("list subscribers: %w", err)
		}
		var out []Delivery
		for _, s := range subs {
			if s.Group == "" {
				continue
			}
			out = append(out, Delivery{
				ChatID: s.ChatID,
				Group:  s.Group,
				Text:   renderWindow(date, s.Group, sched[s.Group], false),
			})
		}
		return out, nil

	case diff.PartialUpdate:
		subs, err := p.dir.ByGroups(ctx, res.Groups())
		if err != nil {
			return nil, fmt.Errorf("list subscribers by queue: %w", err)
		}
		var out []Delivery
		for _, s := range subs {
			w, ok := res.Changed[s.Group]
			if !ok {
				continue
			}
			out = append(out, Delivery{
				ChatID: s.ChatID,
				Group:  s.Group,
				Text:   renderWindow(date, s.Group, w, true),
			})
		}
		return out, nil

	default:
		return nil, nil
	}
}
