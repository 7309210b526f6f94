// Package store persists schedules and subscribers in a SQLite database. One
// schedule row exists per calendar date; subscribers are keyed by their chat
// id and carry at most one queue assignment.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/akostiuk/zoewatch/core/model"
	"github.com/akostiuk/zoewatch/core/storage"
)

const dateFormat = "2006-01-02"

// Store implements storage.ScheduleRepository and
// storage.SubscriberDirectory on a single SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	schema := `CREATE TABLE IF NOT EXISTS schedules (
        date TEXT PRIMARY KEY,
        queues TEXT NOT NULL
    );
    CREATE TABLE IF NOT EXISTS subscribers (
        chat_id INTEGER PRIMARY KEY,
        group_id TEXT NOT NULL DEFAULT ''
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &Store{db: db}, nil
}

// GetByDate returns the stored schedule for the date, if any.
func (s *Store) GetByDate(ctx context.Context, date time.Time) (model.Schedule, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT queues FROM schedules WHERE date = ?`, date.Format(dateFormat)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var stored map[model.Group]string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, false, fmt.Errorf("unmarshal schedule: %w", err)
	}
	// rows written by older builds may miss queues; the catalog invariant is
	// restored on read
	sched := model.NewSchedule()
	for _, g := range model.Groups {
		if w, ok := stored[g]; ok {
			sched[g] = w
		}
	}
	return sched, true, nil
}

// Insert stores the first schedule for a date.
func (s *Store) Insert(ctx context.Context, date time.Time, sched model.Schedule) error {
	raw, err := json.Marshal(sched)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO schedules (date, queues) VALUES (?, ?)`, date.Format(dateFormat), string(raw))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateDate, date.Format(dateFormat))
	}
	return err
}

// Update replaces the schedule stored for an existing date.
func (s *Store) Update(ctx context.Context, date time.Time, sched model.Schedule) error {
	raw, err := json.Marshal(sched)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedules SET queues = ? WHERE date = ?`, string(raw), date.Format(dateFormat))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no schedule stored for %s", date.Format(dateFormat))
	}
	return nil
}

// All returns every subscriber.
func (s *Store) All(ctx context.Context) ([]storage.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chat_id, group_id FROM subscribers`)
	if err != nil {
		return nil, err
	}
	return scanSubscribers(rows)
}

// ByGroups returns subscribers whose queue is in groups.
func (s *Store) ByGroups(ctx context.Context, groups []model.Group) ([]storage.Subscriber, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(groups))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(groups))
	for i, g := range groups {
		args[i] = string(g)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, group_id FROM subscribers WHERE group_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	return scanSubscribers(rows)
}

// Get returns the subscriber with the given chat id, if any.
func (s *Store) Get(ctx context.Context, chatID int64) (storage.Subscriber, bool, error) {
	var sub storage.Subscriber
	var group string
	err := s.db.QueryRowContext(ctx,
		`SELECT chat_id, group_id FROM subscribers WHERE chat_id = ?`, chatID).Scan(&sub.ChatID, &group)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Subscriber{}, false, nil
	}
	if err != nil {
		return storage.Subscriber{}, false, err
	}
	sub.Group = model.Group(group)
	return sub, true, nil
}

// Subscribe stores or replaces the queue assignment for a chat.
func (s *Store) Subscribe(ctx context.Context, chatID int64, g model.Group) error {
	if !model.ValidGroup(string(g)) {
		return fmt.Errorf("unknown queue %q", g)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscribers (chat_id, group_id) VALUES (?, ?)
         ON CONFLICT(chat_id) DO UPDATE SET group_id = excluded.group_id`, chatID, string(g))
	return err
}

// Unsubscribe removes the chat's record entirely.
func (s *Store) Unsubscribe(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM subscribers WHERE chat_id = ?`, chatID)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanSubscribers(rows *sql.Rows) ([]storage.Subscriber, error) {
	defer func() { _ = rows.Close() }()
	var subs []storage.Subscriber
	for rows.Next() {
		var sub storage.Subscriber
		var group string
		if err := rows.Scan(&sub.ChatID, &group); err != nil {
			return nil, err
		}
		sub.Group = model.Group(group)
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}
