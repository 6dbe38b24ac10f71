package resilience

import (
	"errors"
	log "log/slog"
	"sync/atomic"
	"time"
)

type State uint32

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	return [...]string{"closed", "open", "half-open"}[s]
}

var ErrOpen = errors.New("circuit breaker open")

type BreakerConfig struct {
	Threshold         int           // consecutive failures before opening
	ResetTimeout      time.Duration // wait before a half-open attempt
	HalfOpenSuccesses int           // successes needed to close
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{Threshold: 4, ResetTimeout: 30 * time.Second, HalfOpenSuccesses: 1}
}

// Breaker stops calling a service that keeps failing so the loop answers
// quickly with a fallback instead of waiting on timeouts.
type Breaker struct {
	name        string
	cfg         BreakerConfig
	state       atomic.Uint32
	failures    atomic.Int32
	successes   atomic.Int32
	lastFailure atomic.Int64
	now         func() time.Time
}

func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = def.ResetTimeout
	}
	if cfg.HalfOpenSuccesses <= 0 {
		cfg.HalfOpenSuccesses = def.HalfOpenSuccesses
	}
	return &Breaker{name: name, cfg: cfg, now: time.Now}
}

// Allow returns ErrOpen while the breaker is open and the reset timeout has
// not passed.
func (b *Breaker) Allow() error {
	if State(b.state.Load()) != Open {
		return nil
	}
	if b.now().Sub(time.Unix(0, b.lastFailure.Load())) > b.cfg.ResetTimeout {
		b.transition(HalfOpen)
		return nil
	}
	return ErrOpen
}

func (b *Breaker) Success() {
	switch State(b.state.Load()) {
	case HalfOpen:
		if b.successes.Add(1) >= int32(b.cfg.HalfOpenSuccesses) {
			b.transition(Closed)
		}
	case Closed:
		b.failures.Store(0)
	}
}

func (b *Breaker) Failure() {
	b.lastFailure.Store(b.now().UnixNano())
	count := b.failures.Add(1)

	switch State(b.state.Load()) {
	case HalfOpen:
		b.transition(Open)
	case Closed:
		if count >= int32(b.cfg.Threshold) {
			b.transition(Open)
		}
	}
}

func (b *Breaker) State() State {
	return State(b.state.Load())
}

func (b *Breaker) transition(to State) {
	from := State(b.state.Swap(uint32(to)))
	if from == to {
		return
	}
	b.successes.Store(0)
	if to == Closed {
		b.failures.Store(0)
	}
	log.Info("Circuit breaker state change", "service", b.name, "from", from, "to", to)
}

// Do runs fn unless the breaker is open.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	if err := b.Allow(); err != nil {
		return zero, err
	}
	v, err := fn()
	if err != nil {
		b.Failure()
		return zero, err
	}
	b.Success()
	return v, nil
}
