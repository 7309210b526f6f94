// Package watch orchestrates the fetch, parse, classify, persist and dispatch
// steps of one polling cycle and schedules cycles at a fixed interval.
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akostiuk/zoewatch/core/diff"
	"github.com/akostiuk/zoewatch/core/dispatch"
	"github.com/akostiuk/zoewatch/core/events"
	"github.com/akostiuk/zoewatch/core/logger"
	"github.com/akostiuk/zoewatch/core/metrics"
	"github.com/akostiuk/zoewatch/core/model"
	"github.com/akostiuk/zoewatch/core/parse"
	"github.com/akostiuk/zoewatch/core/storage"
	"github.com/akostiuk/zoewatch/internal/eventbus"
)

// Fetcher retrieves the current state of the announcement page as raw text.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Dispatcher delivers planned notifications. Implemented by
// dispatch.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, cycleID string, deliveries []dispatch.Delivery) dispatch.Result
}

// Planner computes deliveries for a classification result. Implemented by
// dispatch.Planner.
type Planner interface {
	Plan(ctx context.Context, date time.Time, res diff.Result, sched model.Schedule) ([]dispatch.Delivery, error)
}

// Announcer receives a schedule change after it has been persisted. Side
// channels such as the MQTT topic or the admin mail digest implement this; a
// failing announcer is logged and never affects the cycle.
type Announcer interface {
	Announce(ctx context.Context, date time.Time, sched model.Schedule, res diff.Result) error
}

// Report summarizes one cycle for callers and tests.
type Report struct {
	CycleID string
	Outcome string
	// Stage names the failed step when the cycle was skipped.
	Stage   string
	Date    time.Time
	Changed int
	Planned int
	Sent    int
}

// Watcher runs the polling pipeline. It holds no schedule state of its own:
// the previously stored schedule is read from the repository at the start of
// every cycle.
type Watcher struct {
	fetcher    Fetcher
	parser     *parse.Parser
	repo       storage.ScheduleRepository
	planner    Planner
	dispatcher Dispatcher
	announcers []Announcer
	sink       metrics.Sink
	bus        eventbus.EventBus
	log        logger.Logger
	interval   time.Duration
	now        func() time.Time
}

// New creates a Watcher. cfg is expected to carry defaults already applied.
func New(cfg Config, f Fetcher, p *parse.Parser, repo storage.ScheduleRepository, pl Planner, d Dispatcher, sink metrics.Sink, bus eventbus.EventBus, log logger.Logger, announcers ...Announcer) (*Watcher, error) {
	if f == nil || p == nil || repo == nil || pl == nil || d == nil {
		return nil, fmt.Errorf("watch: nil parameter provided to New")
	}
	if cfg.IntervalMinutes <= 0 {
		cfg.SetDefaults()
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Watcher{
		fetcher:    f,
		parser:     p,
		repo:       repo,
		planner:    pl,
		dispatcher: d,
		announcers: announcers,
		sink:       sink,
		bus:        bus,
		log:        log,
		interval:   time.Duration(cfg.IntervalMinutes) * time.Minute,
		now:        time.Now,
	}, nil
}

// Run executes the first cycle immediately, then one cycle per interval until
// the context is cancelled. Cycles run to completion before the next tick is
// served, so they never overlap.
func (w *Watcher) Run(ctx context.Context) {
	w.Cycle(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.Cycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Cycle runs one fetch-parse-classify-dispatch pass. Every failure mode is a
// logged skip; Cycle never returns an error and never panics the process.
func (w *Watcher) Cycle(ctx context.Context) Report {
	cycleID := uuid.NewString()
	start := w.now()

	skip := func(stage string) Report {
		rep := Report{CycleID: cycleID, Outcome: "skipped", Stage: stage}
		w.finish(rep, start)
		return rep
	}

	body, err := w.fetcher.Fetch(ctx)
	if err != nil {
		w.log.Warnf("fetch failed: %v", err)
		return skip("fetch")
	}

	block, ok := w.parser.Locate(body)
	if !ok {
		w.log.Debugf("no announcement located, skipping cycle")
		return skip("locate")
	}
	if block.Class == model.ClassUnrecognized {
		w.log.Warnf("unrecognized announcement title: %q", block.Title)
		return skip("classify")
	}

	date, ok := w.parser.ResolveDate(block.Title, block.Class, start)
	if !ok {
		w.log.Warnf("could not resolve date from title: %q", block.Title)
		return skip("date")
	}

	fresh := w.parser.Extract(block.Text)

	stored, found, err := w.repo.GetByDate(ctx, date)
	if err != nil {
		// conservative: a failed read degrades to "absent" and may cause a
		// repeated first publication
		w.log.Warnf("repository read failed, treating schedule as absent: %v", err)
		found = false
	}
	var prev model.Schedule
	if found {
		prev = stored
	}

	res := diff.Classify(fresh, prev)
	rep := Report{CycleID: cycleID, Outcome: res.Outcome.String(), Date: date, Changed: len(res.Changed)}

	if res.Outcome == diff.NoChange {
		w.log.Debugf("schedule for %s unchanged", date.Format("2006-01-02"))
		w.finish(rep, start)
		return rep
	}

	if err := w.persist(ctx, date, fresh, res.Outcome); err != nil {
		w.log.Errorf("persist schedule for %s: %v", date.Format("2006-01-02"), err)
		rep.Outcome = "skipped"
		rep.Stage = "store"
		w.finish(rep, start)
		return rep
	}
	if w.bus != nil {
		w.bus.Publish(events.ScheduleChangedEvent{
			CycleID:  cycleID,
			Date:     date,
			Changed:  res.Groups(),
			Schedule: fresh,
		})
	}

	deliveries, err := w.planner.Plan(ctx, date, res, fresh)
	if err != nil {
		w.log.Errorf("plan deliveries: %v", err)
	} else {
		rep.Planned = len(deliveries)
		result := w.dispatcher.Dispatch(ctx, cycleID, deliveries)
		rep.Sent = result.SentCount()
	}

	for _, a := range w.announcers {
		if err := a.Announce(ctx, date, fresh, res); err != nil {
			w.log.Errorf("announcer error: %v", err)
		}
	}

	w.log.Infof("cycle %s: %s for %s, %d changed queues, %d/%d delivered",
		cycleID, res.Outcome, date.Format("2006-01-02"), len(res.Changed), rep.Sent, rep.Planned)
	w.finish(rep, start)
	return rep
}

func (w *Watcher) persist(ctx context.Context, date time.Time, s model.Schedule, outcome diff.Outcome) error {
	if outcome == diff.FirstPublication {
		err := w.repo.Insert(ctx, date, s)
		if errors.Is(err, storage.ErrDuplicateDate) {
			// a failed read earlier in the cycle can make a known date look
			// fresh; fall back to replacing the record
			w.log.Warnf("insert hit existing date %s, updating instead", date.Format("2006-01-02"))
			return w.repo.Update(ctx, date, s)
		}
		return err
	}
	return w.repo.Update(ctx, date, s)
}

func (w *Watcher) finish(rep Report, start time.Time) {
	dur := w.now().Sub(start)
	if w.bus != nil {
		w.bus.Publish(events.CycleEvent{
			CycleID:  rep.CycleID,
			Outcome:  rep.Outcome,
			Stage:    rep.Stage,
			Date:     rep.Date,
			Duration: dur,
		})
	}
	if err := w.sink.RecordCycle(metrics.CycleResult{
		CycleID:  rep.CycleID,
		Outcome:  rep.Outcome,
		Stage:    rep.Stage,
		Date:     rep.Date,
		Changed:  rep.Changed,
		Duration: dur,
		Time:     w.now(),
	}); err != nil {
		w.log.Errorf("cycle metrics error: %v", err)
	}
}
