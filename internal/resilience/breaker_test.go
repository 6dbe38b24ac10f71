package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAndRecovers(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker("dialogue", BreakerConfig{Threshold: 2, ResetTimeout: time.Minute, HalfOpenSuccesses: 1})
	b.now = func() time.Time { return now }

	boom := errors.New("boom")
	fail := func() (string, error) { return "", boom }
	ok := func() (string, error) { return "ok", nil }

	for i := 0; i < 2; i++ {
		if _, err := Do(b, fail); !errors.Is(err, boom) {
			t.Fatalf("call %d err = %v", i, err)
		}
	}
	if b.State() != Open {
		t.Fatalf("state = %v, want open", b.State())
	}
	if _, err := Do(b, ok); !errors.Is(err, ErrOpen) {
		t.Fatalf("open breaker err = %v, want ErrOpen", err)
	}

	now = now.Add(2 * time.Minute)
	got, err := Do(b, ok)
	if err != nil || got != "ok" {
		t.Fatalf("half-open call = %q, %v", got, err)
	}
	if b.State() != Closed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker("stt", BreakerConfig{Threshold: 1, ResetTimeout: time.Second})
	b.now = func() time.Time { return now }

	b.Failure()
	now = now.Add(2 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("Allow after timeout = %v", err)
	}
	if b.State() != HalfOpen {
		t.Fatalf("state = %v, want half-open", b.State())
	}
	b.Failure()
	if b.State() != Open {
		t.Errorf("state = %v, want open", b.State())
	}
}

func TestStateString(t *testing.T) {
	if HalfOpen.String() != "half-open" {
		t.Errorf("HalfOpen.String() = %q", HalfOpen.String())
	}
}
