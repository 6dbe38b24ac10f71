package notify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ardomis/pkg/audioconv"
)

type recordPlayer struct {
	played [][]float32
	rates  []int
}

func (p *recordPlayer) PlaySamples(_ context.Context, s []float32, rate int, _ time.Duration) error {
	p.played = append(p.played, s)
	p.rates = append(p.rates, rate)
	return nil
}

func TestBuiltinEffects(t *testing.T) {
	for name, gen := range builtin {
		t.Run(name, func(t *testing.T) {
			s := gen()
			if len(s) < samples(100*time.Millisecond) {
				t.Fatalf("%s is only %d samples", name, len(s))
			}
			for i, v := range s {
				if v < -1 || v > 1 {
					t.Fatalf("sample %d = %f out of range", i, v)
				}
			}
			if s[0] != 0 {
				t.Errorf("first sample = %f, want faded in", s[0])
			}
		})
	}
}

func TestPlayBuiltinAndCache(t *testing.T) {
	p := &recordPlayer{}
	e := New(t.TempDir(), p)

	for range 2 {
		if err := e.Play(context.Background(), "laser"); err != nil {
			t.Fatalf("Play: %v", err)
		}
	}
	if len(p.played) != 2 || p.rates[0] != Rate {
		t.Fatalf("played %d clips at %v", len(p.played), p.rates)
	}
	if &p.played[0][0] != &p.played[1][0] {
		t.Error("second play did not reuse the cached clip")
	}
}

func TestPlayFileOverride(t *testing.T) {
	dir := t.TempDir()
	pcm := make([]int16, Rate/10)
	for i := range pcm {
		pcm[i] = 8000
	}
	data, err := audioconv.EncodeWAV(pcm, Rate)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "beep.wav"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	p := &recordPlayer{}
	if err := New(dir, p).Play(context.Background(), "beep"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if got := len(p.played[0]); got != len(pcm) {
		t.Errorf("played %d samples, want %d from file", got, len(pcm))
	}
}

func TestUnknownEffect(t *testing.T) {
	p := &recordPlayer{}
	err := New("", p).Play(context.Background(), "kazoo")
	if !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("err = %v, want ErrUnknownEffect", err)
	}
	if len(p.played) != 0 {
		t.Error("played something for an unknown effect")
	}
}
