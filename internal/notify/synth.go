package notify

import (
	"math"
	"math/rand/v2"
	"time"
)

var builtin = map[string]func() []float32{
	"beep":   beep,
	"laser":  laser,
	"robot":  robot,
	"glitch": glitch,
}

const level = 0.4

func beep() []float32 {
	return sweep(880, 880, 150*time.Millisecond, sine)
}

func laser() []float32 {
	return sweep(1800, 300, 350*time.Millisecond, sine)
}

func robot() []float32 {
	var out []float32
	for i, f := range []float64{300, 450, 300, 600} {
		if i > 0 {
			out = append(out, make([]float32, samples(30*time.Millisecond))...)
		}
		out = append(out, sweep(f, f, 80*time.Millisecond, square)...)
	}
	return out
}

// glitch is a few bursts of noise; the fixed seed keeps it the same sound
// every time.
func glitch() []float32 {
	rng := rand.New(rand.NewPCG(7, 11))
	var out []float32
	for range 5 {
		burst := make([]float32, samples(time.Duration(20+rng.IntN(40))*time.Millisecond))
		for i := range burst {
			burst[i] = float32((rng.Float64()*2 - 1) * level)
		}
		envelope(burst)
		out = append(out, burst...)
		out = append(out, make([]float32, samples(time.Duration(10+rng.IntN(30))*time.Millisecond))...)
	}
	return out
}

func sine(phase float64) float64 { return math.Sin(phase) }

func square(phase float64) float64 {
	if math.Sin(phase) >= 0 {
		return 0.6
	}
	return -0.6
}

// sweep renders wave with a frequency moving linearly from f0 to f1.
func sweep(f0, f1 float64, d time.Duration, wave func(float64) float64) []float32 {
	n := samples(d)
	out := make([]float32, n)
	phase := 0.0
	for i := range out {
		f := f0 + (f1-f0)*float64(i)/float64(n)
		phase += 2 * math.Pi * f / Rate
		out[i] = float32(wave(phase) * level)
	}
	envelope(out)
	return out
}

// envelope applies short linear fades so clips start and end without clicks.
func envelope(s []float32) {
	fade := min(len(s)/2, samples(5*time.Millisecond))
	for i := 0; i < fade; i++ {
		g := float32(i) / float32(fade)
		s[i] *= g
		s[len(s)-1-i] *= g
	}
}

func samples(d time.Duration) int {
	return int(d.Seconds() * Rate)
}
