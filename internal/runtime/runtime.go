// Package runtime runs the conversation loop: it listens, decides whether
// it is being addressed, and moves between passive presence and active chat
// while delivering scheduled reminders on time.
package runtime

import (
	"context"
	log "log/slog"
	"time"

	"ardomis/internal/chime"
	"ardomis/internal/commands"
	"ardomis/internal/dialogue"
	"ardomis/internal/emotion"
	"ardomis/internal/memory"
	"ardomis/internal/schedule"
	"ardomis/internal/transcript"
	"ardomis/pkg/stt"
)

type Mode int

const (
	Presence Mode = iota
	Chat
)

func (m Mode) String() string {
	if m == Chat {
		return "chat"
	}
	return "presence"
}

// Listener captures one utterance, waiting at most maxWait for it to begin.
// It returns no samples when nobody spoke.
type Listener interface {
	Capture(ctx context.Context, maxWait time.Duration) ([]int16, error)
	SampleRate() int
}

type Speaker interface {
	Speak(ctx context.Context, text string) error
}

type EffectPlayer interface {
	Play(ctx context.Context, name string) error
}

type Responder interface {
	Reply(ctx context.Context, system string, history []memory.Message, user string, deep bool) (string, error)
}

type Commands interface {
	Handle(ctx context.Context, norm, raw string) commands.Result
}

type DueSource interface {
	DueItems(ctx context.Context) ([]schedule.Item, error)
}

type History interface {
	Messages() []memory.Message
	LastUser() string
	AddUser(ctx context.Context, text string) error
	AddAssistant(ctx context.Context, text string) error
}

type MoodStore interface {
	Save(s *emotion.State) error
}

type WakeMatcher interface {
	Said(raw string) bool
}

type Publisher interface {
	Publish(verb, noun string, args ...string) error
}

type Options struct {
	Cooldown        time.Duration
	DedupeWindow    time.Duration
	ChatIdleTimeout time.Duration
	ResponseWindow  time.Duration
	PresencePoll    time.Duration
	ServiceTimeout  time.Duration
}

func DefaultOptions() Options {
	return Options{
		Cooldown:        100 * time.Millisecond,
		DedupeWindow:    6 * time.Second,
		ChatIdleTimeout: 12 * time.Second,
		ResponseWindow:  20 * time.Second,
		PresencePoll:    2 * time.Second,
		ServiceTimeout:  35 * time.Second,
	}
}

// Deps are the collaborators of a Controller. Effects, Chime and Publisher
// may be nil.
type Deps struct {
	Listener  Listener
	STT       stt.Transcriber
	Speaker   Speaker
	Effects   EffectPlayer
	Dialogue  Responder
	Commands  Commands
	Schedule  DueSource
	History   History
	Mood      *emotion.State
	MoodStore MoodStore
	Planner   *chime.Planner
	Chime     chime.Generator
	Wake      WakeMatcher
	Publisher Publisher
	Persona   dialogue.Persona
}

// Controller owns all conversation state. Everything except Notify must be
// called from the loop goroutine.
type Controller struct {
	Deps
	opt Options

	mode                Mode
	responseWindowUntil time.Time
	nextChimeAt         time.Time
	ignoreAudioUntil    time.Time
	dedupe              *transcript.DedupeGuard

	inbox chan string
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

func New(deps Deps, opt Options) *Controller {
	if deps.Persona.Name == "" {
		deps.Persona = dialogue.DefaultPersona
	}
	c := &Controller{
		Deps:   deps,
		opt:    opt,
		mode:   Presence,
		dedupe: transcript.NewDedupeGuard(opt.DedupeWindow),
		inbox:  make(chan string, 16),
		now:    time.Now,
		sleep:  sleepCtx,
	}
	c.scheduleChime()
	return c
}

// WithClock replaces time and sleeping, for tests.
func (c *Controller) WithClock(now func() time.Time, sleep func(context.Context, time.Duration)) *Controller {
	c.now = now
	c.sleep = sleep
	c.scheduleChime()
	return c
}

func (c *Controller) Mode() Mode { return c.mode }

// Notify queues an out-of-band command (wake, sleep, chime, quit) for the
// loop. It is safe to call from any goroutine and drops the command when the
// inbox is full.
func (c *Controller) Notify(cmd string) {
	select {
	case c.inbox <- cmd:
	default:
		log.Warn("Control inbox full, dropping command", "cmd", cmd)
	}
}

// Run ticks until a quit phrase or command, or until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	c.publishMode()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if c.Tick(ctx) {
			return nil
		}
	}
}

// Tick runs one loop iteration and reports whether the loop should stop.
func (c *Controller) Tick(ctx context.Context) bool {
	if c.drainInbox(ctx) {
		return true
	}

	c.deliverDue(ctx)
	c.driftMood()

	if c.mode == Presence {
		c.presenceTick(ctx)
		return false
	}
	return c.chatTick(ctx)
}

func (c *Controller) drainInbox(ctx context.Context) bool {
	for {
		select {
		case cmd := <-c.inbox:
			log.Info("Control command", "cmd", cmd)
			switch cmd {
			case "wake":
				c.responseWindowUntil = time.Time{}
				c.setMode(Chat)
				c.say(ctx, lineWake)
			case "sleep":
				c.toPresence()
				c.say(ctx, lineSleep)
			case "chime":
				c.nextChimeAt = c.now()
			case "quit":
				c.say(ctx, lineQuit)
				return true
			}
		default:
			return false
		}
	}
}

func (c *Controller) deliverDue(ctx context.Context) {
	items, err := c.Schedule.DueItems(ctx)
	if err != nil {
		c.report("Failed to poll schedule", err)
		return
	}
	for _, it := range items {
		log.Info("Delivering scheduled item", "id", it.ID, "kind", it.Kind, "due", it.DueAt)
		c.say(ctx, it.Announcement())
	}
}

func (c *Controller) driftMood() {
	c.Mood.Drift(c.now())
	c.saveMood()
}

func (c *Controller) saveMood() {
	if c.MoodStore == nil {
		return
	}
	if err := c.MoodStore.Save(c.Mood); err != nil {
		log.Warn("Failed to save mood state", "err", err)
	}
}

func (c *Controller) setMode(m Mode) {
	if c.mode == m {
		return
	}
	log.Info("Mode change", "from", c.mode, "to", m)
	c.mode = m
	c.publishMode()
}

func (c *Controller) toPresence() {
	c.setMode(Presence)
	c.scheduleChime()
}

func (c *Controller) scheduleChime() {
	if c.Planner == nil {
		c.nextChimeAt = time.Time{}
		return
	}
	c.nextChimeAt = c.now().Add(c.Planner.NextDelay(*c.Mood))
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
