// Package schedule persists timers, alarms and reminders and hands each due
// item out exactly once.
package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"ardomis/internal/store"
)

var ErrInvalidTime = errors.New("invalid time")

// ErrTooFar rejects relative timers and reminders beyond MaxDelay.
var ErrTooFar = fmt.Errorf("%w: more than a year out", ErrInvalidTime)

// MaxDelay bounds timers and reminders set relative to now.
const MaxDelay = 366 * 24 * time.Hour

type Kind string

const (
	KindTimer    Kind = "timer"
	KindAlarm    Kind = "alarm"
	KindReminder Kind = "reminder"
)

type Item struct {
	ID        int64
	Kind      Kind
	Text      string
	DueAt     time.Time
	CreatedAt time.Time
	Delivered bool
}

// Announcement is the line spoken when the item fires.
func (it Item) Announcement() string {
	kind := string(it.Kind)
	if kind == "" {
		kind = "schedule"
	}
	return strings.ToUpper(kind[:1]) + kind[1:] + " reminder: " + it.Text
}

type Scheduler struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

// New uses db, already migrated by store.Open. Wall-clock times are read in loc.
func New(db *sql.DB, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{db: db, loc: loc, now: time.Now}
}

// WithClock replaces the time source, mostly for tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// AddTimer schedules a timer seconds from now. Values below one second are
// raised to one; values beyond MaxDelay fail with ErrTooFar.
func (s *Scheduler) AddTimer(ctx context.Context, seconds int, text string) (Item, error) {
	if seconds > int(MaxDelay/time.Second) {
		return Item{}, fmt.Errorf("timer of %d seconds: %w", seconds, ErrTooFar)
	}
	seconds = max(1, seconds)
	now := s.now()
	return s.insert(ctx, KindTimer, text, now, now.Add(time.Duration(seconds)*time.Second))
}

// AddReminderIn schedules a reminder minutes from now, at least one minute.
func (s *Scheduler) AddReminderIn(ctx context.Context, minutes int, text string) (Item, error) {
	if minutes > int(MaxDelay/time.Minute) {
		return Item{}, fmt.Errorf("reminder in %d minutes: %w", minutes, ErrTooFar)
	}
	minutes = max(1, minutes)
	now := s.now()
	return s.insert(ctx, KindReminder, text, now, now.Add(time.Duration(minutes)*time.Minute))
}

// AddAlarm schedules an alarm at the next occurrence of "HH:MM" local time.
// A time not strictly after now rolls to tomorrow.
func (s *Scheduler) AddAlarm(ctx context.Context, hhmm, text string) (Item, error) {
	hour, minute, err := parseClock(hhmm)
	if err != nil {
		return Item{}, err
	}

	now := s.now()
	local := now.In(s.loc)
	due := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, s.loc)
	if !due.After(now) {
		due = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, s.loc)
	}
	return s.insert(ctx, KindAlarm, text, now, due)
}

// AddReminderAt schedules a reminder at an absolute "YYYY-MM-DD HH:MM" local
// time. A past time is accepted and fires on the next poll.
func (s *Scheduler) AddReminderAt(ctx context.Context, when, text string) (Item, error) {
	due, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(when), s.loc)
	if err != nil {
		return Item{}, fmt.Errorf("%w: %q", ErrInvalidTime, when)
	}
	return s.insert(ctx, KindReminder, text, s.now(), due)
}

// DueItems claims every undelivered item due at or before now and returns
// them ordered by due time. A claimed item is never returned again, even if
// the caller fails to announce it.
func (s *Scheduler) DueItems(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		UPDATE schedule_items SET delivered = 1
		WHERE delivered = 0 AND due_at <= ?
		RETURNING id, created_at, due_at, kind, text, delivered`,
		store.UnixSeconds(s.now()))
	if err != nil {
		return nil, fmt.Errorf("claim due items: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("claim due items: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DueAt.Equal(items[j].DueAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].DueAt.Before(items[j].DueAt)
	})
	return items, nil
}

// ListPending returns up to limit undelivered items, soonest first.
func (s *Scheduler) ListPending(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 12
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, due_at, kind, text, delivered
		FROM schedule_items
		WHERE delivered = 0
		ORDER BY due_at ASC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return items, nil
}

func (s *Scheduler) insert(ctx context.Context, kind Kind, text string, created, due time.Time) (Item, error) {
	text = strings.TrimSpace(text)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_items (created_at, due_at, kind, text, delivered) VALUES (?, ?, ?, ?, 0)`,
		store.UnixSeconds(created), store.UnixSeconds(due), string(kind), text)
	if err != nil {
		return Item{}, fmt.Errorf("insert %s: %w", kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Item{}, fmt.Errorf("insert %s: %w", kind, err)
	}
	return Item{ID: id, Kind: kind, Text: text, DueAt: due, CreatedAt: created}, nil
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it           Item
			created, due float64
			kind         string
			delivered    int
		)
		if err := rows.Scan(&it.ID, &created, &due, &kind, &it.Text, &delivered); err != nil {
			return nil, err
		}
		it.Kind = Kind(kind)
		it.CreatedAt = store.FromUnixSeconds(created)
		it.DueAt = store.FromUnixSeconds(due)
		it.Delivered = delivered != 0
		items = append(items, it)
	}
	return items, rows.Err()
}

func parseClock(hhmm string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok || len(m) != 2 || len(h) == 0 || len(h) > 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	hour, err1 := strconv.Atoi(h)
	minute, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	return hour, minute, nil
}
