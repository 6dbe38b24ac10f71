package transcript

import "time"

// DedupeGuard suppresses a transcript identical to the one accepted just
// before it. It remembers exactly one previous transcript; it exists to
// swallow echo and reverb double-triggers.
type DedupeGuard struct {
	window time.Duration
	last   string
	lastAt time.Time
}

func NewDedupeGuard(window time.Duration) *DedupeGuard {
	return &DedupeGuard{window: window}
}

// Suppress reports whether norm repeats the last accepted transcript within
// the window. Accepted transcripts become the new reference point.
func (g *DedupeGuard) Suppress(norm string, now time.Time) bool {
	if norm != "" && norm == g.last && now.Sub(g.lastAt) <= g.window {
		return true
	}
	g.last = norm
	g.lastAt = now
	return false
}
