package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

const (
	OutputRate beep.SampleRate = 48000
	// speakerBuffer is how far the mixer runs ahead of the device.
	speakerBuffer = time.Second / 10
)

// Player plays clips through the default output one at a time.
type Player struct {
	once    sync.Once
	initErr error
	mu      sync.Mutex
}

func NewPlayer() *Player { return &Player{} }

func (p *Player) init() error {
	p.once.Do(func() {
		p.initErr = speaker.Init(OutputRate, OutputRate.N(speakerBuffer))
	})
	return p.initErr
}

// PlayMP3 decodes and plays an mp3 stream after lead silence.
func (p *Player) PlayMP3(ctx context.Context, rc io.ReadCloser, lead time.Duration) error {
	streamer, format, err := mp3.Decode(rc)
	if err != nil {
		return fmt.Errorf("decode mp3: %w", err)
	}
	defer streamer.Close()

	return p.Play(ctx, streamer, format.SampleRate, lead)
}

// PlaySamples plays mono samples in [-1, 1] recorded at rate.
func (p *Player) PlaySamples(ctx context.Context, samples []float32, rate int, lead time.Duration) error {
	return p.Play(ctx, monoStreamer(samples), beep.SampleRate(rate), lead)
}

// Play blocks until s is drained or ctx is done.
func (p *Player) Play(ctx context.Context, s beep.Streamer, rate beep.SampleRate, lead time.Duration) error {
	if err := p.init(); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if rate != OutputRate {
		s = beep.Resample(4, rate, OutputRate, s)
	}

	done := make(chan struct{})
	speaker.Play(sequence(s, lead, func() { close(done) }))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// sequence pads s with lead silence and calls done once s has reached the
// device, not merely the mixer buffer.
func sequence(s beep.Streamer, lead time.Duration, done func()) beep.Streamer {
	seq := []beep.Streamer{}
	if lead > 0 {
		seq = append(seq, beep.Silence(OutputRate.N(lead)))
	}
	seq = append(seq, s, beep.Silence(OutputRate.N(speakerBuffer)), beep.Callback(done))
	return beep.Seq(seq...)
}

func monoStreamer(samples []float32) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(out [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := copyMono(out, samples[pos:])
		pos += n
		return n, true
	})
}

func copyMono(out [][2]float64, src []float32) int {
	n := min(len(out), len(src))
	for i := 0; i < n; i++ {
		v := float64(src[i])
		out[i][0], out[i][1] = v, v
	}
	return n
}
