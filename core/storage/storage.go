// Package storage defines the persistence contracts consumed by the watch
// pipeline. The core never owns persistent state; it reads and writes through
// these interfaces once per cycle.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/akostiuk/zoewatch/core/model"
)

// ErrDuplicateDate is returned by Insert when a schedule already exists for
// the date.
var ErrDuplicateDate = errors.New("schedule already stored for date")

// ScheduleRepository keeps one schedule per calendar date.
type ScheduleRepository interface {
	// GetByDate returns the stored schedule for the date. The second return
	// is false when no schedule is stored.
	GetByDate(ctx context.Context, date time.Time) (model.Schedule, bool, error)
	// Insert stores the first schedule for a date. It fails with
	// ErrDuplicateDate when the date is already present.
	Insert(ctx context.Context, date time.Time, s model.Schedule) error
	// Update replaces the schedule stored for an existing date.
	Update(ctx context.Context, date time.Time, s model.Schedule) error
}

// Subscriber is one notification recipient. Group is empty when the
// subscriber has not picked a queue yet; such subscribers receive nothing.
type Subscriber struct {
	ChatID int64
	Group  model.Group
}

// SubscriberDirectory lists recipients and their queue assignments. All and
// ByGroups feed dispatch planning; the remaining methods serve the chat
// command surface.
type SubscriberDirectory interface {
	All(ctx context.Context) ([]Subscriber, error)
	ByGroups(ctx context.Context, groups []model.Group) ([]Subscriber, error)
	Get(ctx context.Context, chatID int64) (Subscriber, bool, error)
	Subscribe(ctx context.Context, chatID int64, g model.Group) error
	Unsubscribe(ctx context.Context, chatID int64) error
}
