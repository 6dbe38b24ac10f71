package transcript

import (
	"testing"
	"time"
)

func TestDedupeGuard(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewDedupeGuard(6 * time.Second)

	if g.Suppress("what time is it", start) {
		t.Fatal("first transcript must be accepted")
	}
	if !g.Suppress("what time is it", start.Add(2*time.Second)) {
		t.Fatal("repeat inside the window must be suppressed")
	}
	if g.Suppress("what time is it", start.Add(7*time.Second)) {
		t.Fatal("repeat after the window must be accepted")
	}

	if !g.Suppress("what time is it", start.Add(9*time.Second)) {
		t.Error("an accepted repeat must restart the window")
	}
}

func TestDedupeGuardOneDeep(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewDedupeGuard(6 * time.Second)

	g.Suppress("a b c", start)
	g.Suppress("d e f", start.Add(time.Second))

	if g.Suppress("a b c", start.Add(2*time.Second)) {
		t.Error("only the immediately preceding transcript is remembered")
	}
}

func TestDedupeGuardEmpty(t *testing.T) {
	now := time.Now()
	g := NewDedupeGuard(time.Minute)

	g.Suppress("", now)
	if g.Suppress("", now) {
		t.Error("empty transcripts are never suppressed")
	}
}
