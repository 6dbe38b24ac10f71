package audio

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptSource plays back a fixed list of chunk amplitudes, then silence.
type scriptSource struct {
	levels []int16
	reads  int
	err    error
	failAt int
}

func (s *scriptSource) Read(frame []int16) error {
	if s.err != nil && s.reads == s.failAt {
		return s.err
	}
	var level int16
	if s.reads < len(s.levels) {
		level = s.levels[s.reads]
	}
	for i := range frame {
		// square wave so RMS equals |level|
		if i%2 == 0 {
			frame[i] = level
		} else {
			frame[i] = -level
		}
	}
	s.reads++
	return nil
}

const (
	quiet = 100  // ~0.003
	mid   = 330  // ~0.010, between thresholds
	loud  = 3000 // ~0.09
)

func testConfig() SegmenterConfig {
	return SegmenterConfig{
		SampleRate:     16000,
		Chunk:          20 * time.Millisecond,
		PreRoll:        100 * time.Millisecond,
		SilenceToStop:  100 * time.Millisecond,
		MaxRecord:      time.Second,
		StartThreshold: 0.012,
		StopThreshold:  0.009,
	}
}

func levels(parts ...[]int16) []int16 {
	var out []int16
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func repeat(v int16, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCaptureUtterance(t *testing.T) {
	tests := []struct {
		name       string
		levels     []int16
		wantChunks int
	}{
		{
			name:       "pre-roll and trailing silence",
			levels:     levels(repeat(quiet, 8), repeat(loud, 10)),
			wantChunks: 5 + 10 + 5, // pre-roll, speech, silence run
		},
		{
			name:       "onset without pre-roll",
			levels:     levels(repeat(loud, 3)),
			wantChunks: 3 + 5,
		},
		{
			name:       "level between thresholds keeps capturing",
			levels:     levels(repeat(loud, 2), repeat(quiet, 3), repeat(mid, 4), repeat(quiet, 2)),
			wantChunks: 2 + 3 + 4 + 5,
		},
		{
			name:       "hard cap",
			levels:     repeat(loud, 500),
			wantChunks: 1 + 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := NewSegmenter(&scriptSource{levels: tt.levels}, testConfig())
			got, err := seg.Capture(context.Background(), 0)
			if err != nil {
				t.Fatalf("Capture: %v", err)
			}
			if want := tt.wantChunks * seg.ChunkSamples(); len(got) != want {
				t.Errorf("captured %d samples (%d chunks), want %d chunks",
					len(got), len(got)/seg.ChunkSamples(), tt.wantChunks)
			}
		})
	}
}

func TestCaptureStartsWithPreRoll(t *testing.T) {
	seg := NewSegmenter(&scriptSource{levels: levels(repeat(quiet, 8), repeat(loud, 2))}, testConfig())
	got, err := seg.Capture(context.Background(), 0)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	n := seg.ChunkSamples()
	if got[0] != quiet {
		t.Errorf("first sample = %d, want pre-roll level %d", got[0], quiet)
	}
	if got[5*n] != loud {
		t.Errorf("sample after pre-roll = %d, want onset level %d", got[5*n], loud)
	}
}

func TestCaptureMaxWait(t *testing.T) {
	src := &scriptSource{}
	seg := NewSegmenter(src, testConfig())

	got, err := seg.Capture(context.Background(), 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d samples from silence", len(got))
	}
	if src.reads != 10 {
		t.Errorf("read %d chunks, want 10", src.reads)
	}
}

func TestCaptureErrors(t *testing.T) {
	boom := errors.New("device gone")

	seg := NewSegmenter(&scriptSource{err: boom, failAt: 0}, testConfig())
	if _, err := seg.Capture(context.Background(), 0); !errors.Is(err, boom) {
		t.Errorf("err = %v, want device error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	seg = NewSegmenter(&scriptSource{}, testConfig())
	if _, err := seg.Capture(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	// a failure after onset keeps the partial utterance
	seg = NewSegmenter(&scriptSource{levels: repeat(loud, 10), err: boom, failAt: 4}, testConfig())
	got, err := seg.Capture(context.Background(), 0)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if want := 4 * seg.ChunkSamples(); len(got) != want {
		t.Errorf("partial capture = %d samples, want %d", len(got), want)
	}
}

// bufferedSource holds stale loud chunks, like a stream left running while
// the speaker talked, until Flush drops them.
type bufferedSource struct {
	scriptSource
	stale    int
	flushes  int
	flushErr error
}

func (b *bufferedSource) Read(frame []int16) error {
	if b.stale > 0 {
		b.stale--
		for i := range frame {
			frame[i] = loud
		}
		return nil
	}
	return b.scriptSource.Read(frame)
}

func (b *bufferedSource) Flush() error {
	if b.flushErr != nil {
		return b.flushErr
	}
	b.flushes++
	b.stale = 0
	return nil
}

func TestCaptureDropsBufferedInput(t *testing.T) {
	src := &bufferedSource{stale: 20}
	seg := NewSegmenter(src, testConfig())

	got, err := seg.Capture(context.Background(), 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("captured %d stale samples, want none", len(got))
	}
	if src.flushes != 1 {
		t.Errorf("flushes = %d, want 1", src.flushes)
	}

	src.stale = 20
	if _, err := seg.Capture(context.Background(), 200*time.Millisecond); err != nil {
		t.Fatalf("second Capture: %v", err)
	}
	if src.flushes != 2 || src.stale != 0 {
		t.Errorf("flushes = %d stale = %d, want a flush per capture", src.flushes, src.stale)
	}
}

func TestCaptureFlushError(t *testing.T) {
	boom := errors.New("stream stuck")
	seg := NewSegmenter(&bufferedSource{flushErr: boom}, testConfig())
	if _, err := seg.Capture(context.Background(), 0); !errors.Is(err, boom) {
		t.Errorf("err = %v, want flush error", err)
	}
}

func TestRMS(t *testing.T) {
	tests := []struct {
		in   []int16
		want float64
	}{
		{nil, 0},
		{[]int16{0, 0, 0}, 0},
		{[]int16{16384, -16384}, 0.5},
		{[]int16{-32768}, 1},
	}
	for _, tt := range tests {
		if got := RMS(tt.in); got != tt.want {
			t.Errorf("RMS(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
