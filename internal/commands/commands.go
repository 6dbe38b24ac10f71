// Package commands answers utterances that need no language model: time,
// volume, timers, alarms and reminders.
package commands

import (
	"context"
	log "log/slog"
	"time"

	"ardomis/internal/schedule"
)

type NextMode int

const (
	Stay NextMode = iota
	ToPresence
)

type Result struct {
	Handled  bool
	Response string
	NextMode NextMode
}

func said(response string) Result {
	return Result{Handled: true, Response: response}
}

type Scheduler interface {
	AddTimer(ctx context.Context, seconds int, text string) (schedule.Item, error)
	AddReminderIn(ctx context.Context, minutes int, text string) (schedule.Item, error)
	AddAlarm(ctx context.Context, hhmm, text string) (schedule.Item, error)
	AddReminderAt(ctx context.Context, when, text string) (schedule.Item, error)
	ListPending(ctx context.Context, limit int) ([]schedule.Item, error)
}

type Volume interface {
	Volume(ctx context.Context) (int, error)
	SetVolume(ctx context.Context, percent int) error
}

// handler reports ok=false when the utterance is not its command.
type handler func(ctx context.Context, norm, raw string) (Result, bool)

type Dispatcher struct {
	sched    Scheduler
	volume   Volume
	loc      *time.Location
	now      func() time.Time
	handlers []handler
}

func NewDispatcher(sched Scheduler, volume Volume, loc *time.Location) *Dispatcher {
	if loc == nil {
		loc = time.Local
	}
	d := &Dispatcher{sched: sched, volume: volume, loc: loc, now: time.Now}
	d.handlers = []handler{d.help, d.volumeCmd, d.scheduleCmd, d.timeCmd}
	return d
}

func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Handle tries each command in order; the first match wins. An unhandled
// result means the utterance belongs to the dialogue service.
func (d *Dispatcher) Handle(ctx context.Context, norm, raw string) Result {
	for _, h := range d.handlers {
		if res, ok := h(ctx, norm, raw); ok {
			log.Debug("Command handled", "text", norm, "response", res.Response)
			return res
		}
	}
	return Result{}
}
