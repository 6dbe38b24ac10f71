// Package tts turns reply text into audible speech.
package tts

import (
	"context"
	log "log/slog"
	"time"
)

// Speaker plays text and returns once playback is finished.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Ducker lowers other audio while we talk.
type Ducker interface {
	Duck(ctx context.Context, factor float64, d time.Duration) error
	Restore(ctx context.Context, d time.Duration) error
}

const (
	duckFactor = 0.25
	duckFade   = 150 * time.Millisecond
)

// Ducked wraps a Speaker so other streams are faded down around speech.
// Mixer errors never block speech.
type Ducked struct {
	Speaker Speaker
	Mixer   Ducker
}

func (d Ducked) Speak(ctx context.Context, text string) error {
	if d.Mixer == nil {
		return d.Speaker.Speak(ctx, text)
	}

	if err := d.Mixer.Duck(ctx, duckFactor, duckFade); err != nil {
		log.Debug("Ducking failed", "err", err)
	}
	defer func() {
		// restore even when ctx was canceled mid speech
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := d.Mixer.Restore(rctx, duckFade); err != nil {
			log.Debug("Restoring volume failed", "err", err)
		}
	}()

	return d.Speaker.Speak(ctx, text)
}
