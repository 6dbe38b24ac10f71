// Package notify plays the short non-verbal sounds Ardomis uses instead of
// words.
package notify

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ardomis/pkg/audioconv"
)

const Rate = 48000

var ErrUnknownEffect = errors.New("unknown sound effect")

var extensions = []string{".wav", ".mp3", ".ogg", ".opus"}

// SamplePlayer plays mono samples in [-1, 1].
type SamplePlayer interface {
	PlaySamples(ctx context.Context, samples []float32, rate int, lead time.Duration) error
}

// Effects plays named effects. A file <dir>/<name>.{wav,mp3,ogg,opus}
// overrides the built-in synthesized sound.
type Effects struct {
	dir    string
	player SamplePlayer

	mu    sync.Mutex
	cache map[string][]float32
}

func New(dir string, player SamplePlayer) *Effects {
	return &Effects{dir: dir, player: player, cache: map[string][]float32{}}
}

func (e *Effects) Play(ctx context.Context, name string) error {
	samples, err := e.load(ctx, name)
	if err != nil {
		return err
	}
	return e.player.PlaySamples(ctx, samples, Rate, 0)
}

func (e *Effects) load(ctx context.Context, name string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.cache[name]; ok {
		return s, nil
	}

	if path := e.find(name); path != "" {
		s, err := audioconv.DecodeFile(ctx, path, audioconv.Options{Rate: Rate})
		if err == nil && len(s) > 0 {
			log.Debug("Loaded sound effect", "name", name, "path", path, "samples", len(s))
			e.cache[name] = s
			return s, nil
		}
		log.Warn("Failed to decode sound effect, using built-in", "path", path, "err", err)
	}

	gen, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	s := gen()
	e.cache[name] = s
	return s, nil
}

func (e *Effects) find(name string) string {
	if e.dir == "" {
		return ""
	}
	for _, ext := range extensions {
		path := filepath.Join(e.dir, name+ext)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path
		}
	}
	return ""
}
