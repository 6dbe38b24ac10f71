package audio

import (
	"context"
	"fmt"
	"math"
	"time"
)

// FrameSource delivers consecutive mono int16 chunks. Read blocks until frame
// is full.
type FrameSource interface {
	Read(frame []int16) error
}

// Flusher is implemented by sources that buffer input between captures.
// Flush discards everything recorded so far.
type Flusher interface {
	Flush() error
}

type SegmenterConfig struct {
	SampleRate     int
	Chunk          time.Duration
	PreRoll        time.Duration
	SilenceToStop  time.Duration
	MaxRecord      time.Duration
	StartThreshold float64
	StopThreshold  float64
}

func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		SampleRate:     44100,
		Chunk:          20 * time.Millisecond,
		PreRoll:        200 * time.Millisecond,
		SilenceToStop:  450 * time.Millisecond,
		MaxRecord:      7 * time.Second,
		StartThreshold: 0.012,
		StopThreshold:  0.009,
	}
}

// Segmenter cuts one utterance out of a continuous input using RMS energy
// with hysteresis. Timing is counted in chunks read, not wall time.
type Segmenter struct {
	src FrameSource
	cfg SegmenterConfig

	chunkSamples  int
	preRollChunks int
	silenceChunks int
	maxChunks     int
}

func NewSegmenter(src FrameSource, cfg SegmenterConfig) *Segmenter {
	def := DefaultSegmenterConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Chunk <= 0 {
		cfg.Chunk = def.Chunk
	}
	if cfg.StartThreshold <= 0 {
		cfg.StartThreshold = def.StartThreshold
	}
	if cfg.StopThreshold <= 0 {
		cfg.StopThreshold = def.StopThreshold
	}

	return &Segmenter{
		src:           src,
		cfg:           cfg,
		chunkSamples:  max(1, int(int64(cfg.SampleRate)*int64(cfg.Chunk)/int64(time.Second))),
		preRollChunks: chunksIn(cfg.PreRoll, cfg.Chunk),
		silenceChunks: chunksIn(cfg.SilenceToStop, cfg.Chunk),
		maxChunks:     chunksIn(cfg.MaxRecord, cfg.Chunk),
	}
}

func (s *Segmenter) SampleRate() int { return s.cfg.SampleRate }

// ChunkSamples is the number of samples read per chunk.
func (s *Segmenter) ChunkSamples() int { return s.chunkSamples }

// Capture waits for speech onset and returns the utterance, pre-roll
// included. With maxWait > 0 it returns an empty slice if no onset is heard in
// time. Once capture has started it runs to offset or the hard cap; ctx is
// only checked while waiting for onset. Input buffered before the call is
// dropped when the source is a Flusher.
func (s *Segmenter) Capture(ctx context.Context, maxWait time.Duration) ([]int16, error) {
	if f, ok := s.src.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return nil, fmt.Errorf("flush input: %w", err)
		}
	}

	waitChunks := 0
	if maxWait > 0 {
		waitChunks = chunksIn(maxWait, s.cfg.Chunk)
	}

	ring := make([][]int16, 0, s.preRollChunks)

	var first []int16
	for waited := 0; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk := make([]int16, s.chunkSamples)
		if err := s.src.Read(chunk); err != nil {
			return nil, err
		}

		if RMS(chunk) >= s.cfg.StartThreshold {
			first = chunk
			break
		}

		if len(ring) == s.preRollChunks {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, chunk)

		waited++
		if waitChunks > 0 && waited >= waitChunks {
			return nil, nil
		}
	}

	out := make([]int16, 0, (len(ring)+s.maxChunks+1)*s.chunkSamples)
	for _, c := range ring {
		out = append(out, c...)
	}
	out = append(out, first...)

	chunk := make([]int16, s.chunkSamples)
	silent := 0
	for i := 0; i < s.maxChunks; i++ {
		if err := s.src.Read(chunk); err != nil {
			// keep what was heard
			return out, nil
		}
		out = append(out, chunk...)

		if RMS(chunk) < s.cfg.StopThreshold {
			silent++
		} else {
			silent = 0
		}
		if silent >= s.silenceChunks {
			break
		}
	}

	return out, nil
}

// RMS returns the root mean square of f normalized to [0, 1].
func RMS(f []int16) float64 {
	if len(f) == 0 {
		return 0
	}
	var sum float64
	for _, x := range f {
		v := float64(x) / 32768
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(f)))
}

func chunksIn(d, chunk time.Duration) int {
	return max(1, int(d/chunk))
}
