// Package emotion models the companion's affect: a handful of 0-100 levels
// that drift toward resting baselines over time and react to interaction.
package emotion

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type State struct {
	Mood   float64 `json:"mood"`
	Energy float64 `json:"energy"`
	Sass   float64 `json:"sass"`

	Jealousy  float64 `json:"jealousy"`
	Patience  float64 `json:"patience"`
	Affection float64 `json:"affection"`
	Trust     float64 `json:"trust"`
	Warmth    float64 `json:"warmth"`

	Focus       float64 `json:"focus"`
	Playfulness float64 `json:"playfulness"`
	Seriousness float64 `json:"seriousness"`
	Curiosity   float64 `json:"curiosity"`

	Irritation float64 `json:"irritation"`
	Annoyance  float64 `json:"annoyance"`
	Excitement float64 `json:"excitement"`

	Boredom    float64 `json:"boredom"`
	Loneliness float64 `json:"loneliness"`

	LastTS float64 `json:"last_ts"`
}

// Baseline is the resting state. Boredom and loneliness rest high so an
// ignored device drifts toward wanting attention.
func Baseline() State {
	return State{
		Mood: 55, Energy: 55, Sass: 70,
		Jealousy: 10, Patience: 62, Affection: 64, Trust: 66, Warmth: 68,
		Focus: 58, Playfulness: 60, Seriousness: 45, Curiosity: 55,
		Irritation: 14, Annoyance: 35, Excitement: 40,
		Boredom: 20, Loneliness: 25,
	}
}

type driftRule struct {
	field  func(*State) *float64
	rest   float64
	perMin float64
}

var driftRules = []driftRule{
	{func(s *State) *float64 { return &s.Mood }, 55, 1.4},
	{func(s *State) *float64 { return &s.Energy }, 55, 1.9},
	{func(s *State) *float64 { return &s.Patience }, 62, 1.2},
	{func(s *State) *float64 { return &s.Affection }, 64, 0.8},
	{func(s *State) *float64 { return &s.Trust }, 66, 0.6},
	{func(s *State) *float64 { return &s.Warmth }, 68, 0.3},
	{func(s *State) *float64 { return &s.Focus }, 58, 1.0},
	{func(s *State) *float64 { return &s.Playfulness }, 60, 1.1},
	{func(s *State) *float64 { return &s.Seriousness }, 45, 0.9},
	{func(s *State) *float64 { return &s.Curiosity }, 55, 0.7},
	{func(s *State) *float64 { return &s.Irritation }, 14, 1.6},
	{func(s *State) *float64 { return &s.Annoyance }, 35, 1.2},
	{func(s *State) *float64 { return &s.Excitement }, 40, 3.5},
	{func(s *State) *float64 { return &s.Boredom }, 72, 1.2},
	{func(s *State) *float64 { return &s.Loneliness }, 62, 0.6},
}

// Drift moves every level toward its resting point by the time elapsed
// since the last call. Sass and jealousy do not drift.
func (s *State) Drift(now time.Time) {
	ts := float64(now.UnixNano()) / 1e9
	if s.LastTS == 0 {
		s.LastTS = ts
		return
	}
	dt := ts - s.LastTS
	if dt <= 0 {
		return
	}

	perMin := dt / 60
	for _, r := range driftRules {
		v := r.field(s)
		*v = approach(*v, r.rest, r.perMin*perMin)
	}
	s.LastTS = ts
}

// OnInteraction is applied once per conversational turn.
func (s *State) OnInteraction(intensity int) {
	k := float64(intensity)
	s.Energy = clamp(s.Energy + 3*k)
	s.Mood = clamp(s.Mood + 2*k)
	s.Focus = clamp(s.Focus + 2*k)
	s.Affection = clamp(s.Affection + 2*k)
	s.Playfulness = clamp(s.Playfulness + 2*k)
	s.Excitement = clamp(s.Excitement + 16*k)
	s.Curiosity = clamp(s.Curiosity + 6*k)
	s.Warmth = clamp(s.Warmth + k)

	s.Boredom = clamp(s.Boredom - 22*k)
	s.Loneliness = clamp(s.Loneliness - 28*k)

	s.Patience = clamp(s.Patience - 1)
	s.Annoyance = clamp(s.Annoyance + 2*k)
}

// QuietDown is the response to being told to tone it down.
func (s *State) QuietDown() {
	s.Annoyance = clamp(s.Annoyance - 25)
	s.Sass = clamp(s.Sass - 20)
	s.Irritation = clamp(s.Irritation - 20)
	s.Playfulness = clamp(s.Playfulness - 15)
}

// GetSerious is the response to "I'm being serious".
func (s *State) GetSerious() {
	s.Seriousness = clamp(s.Seriousness + 30)
	s.Sass = clamp(s.Sass - 22)
	s.Irritation = clamp(s.Irritation - 18)
	s.Playfulness = clamp(s.Playfulness - 25)
	s.Annoyance = clamp(s.Annoyance - 15)
}

func (s State) MoodLine() string {
	mood := s.level(s.Mood)
	energy := s.level(s.Energy)
	sass := s.level(s.Sass)

	var extras []string
	if s.Boredom > 65 {
		extras = append(extras, "bored")
	}
	if s.Loneliness > 60 {
		extras = append(extras, "distant")
	}
	if s.Excitement > 72 {
		extras = append(extras, "pumped")
	}
	if s.Warmth > 82 {
		extras = append(extras, "warm")
	}
	if s.Curiosity > 75 {
		extras = append(extras, "curious")
	}
	if s.Irritation > 55 {
		extras = append(extras, "prickly")
	}

	line := fmt.Sprintf("mood=%s(%d), energy=%s(%d), sass=%s(%d)",
		bucket(mood, moodWords), mood,
		bucket(energy, energyWords), energy,
		sassWord(sass), sass)
	if len(extras) > 0 {
		line += ", " + strings.Join(extras, "/")
	}
	return line
}

func (s State) Meter() string {
	l := s.level
	return fmt.Sprintf("full state: mood=%d energy=%d sass=%d playfulness=%d focus=%d "+
		"affection=%d warmth=%d trust=%d patience=%d curiosity=%d "+
		"excitement=%d irritation=%d annoyance=%d seriousness=%d "+
		"boredom=%d loneliness=%d jealousy=%d",
		l(s.Mood), l(s.Energy), l(s.Sass), l(s.Playfulness), l(s.Focus),
		l(s.Affection), l(s.Warmth), l(s.Trust), l(s.Patience), l(s.Curiosity),
		l(s.Excitement), l(s.Irritation), l(s.Annoyance), l(s.Seriousness),
		l(s.Boredom), l(s.Loneliness), l(s.Jealousy))
}

func (State) level(v float64) int { return int(math.Round(v)) }

var (
	moodWords   = [...]string{"dark", "glum", "meh", "decent", "good", "electric"}
	energyWords = [...]string{"dead", "drained", "low-key", "awake", "wired", "overdrive"}
)

// bucket maps <25, <40, <55, <70, <85, rest onto words.
func bucket(v int, words [6]string) string {
	for i, limit := range [...]int{25, 40, 55, 70, 85} {
		if v < limit {
			return words[i]
		}
	}
	return words[5]
}

func sassWord(v int) string {
	switch {
	case v < 35:
		return "soft"
	case v < 55:
		return "dry"
	case v < 75:
		return "sharp"
	default:
		return "feral"
	}
}

func approach(cur, rest, step float64) float64 {
	switch {
	case cur < rest:
		return clamp(math.Min(rest, cur+step))
	case cur > rest:
		return clamp(math.Max(rest, cur-step))
	}
	return clamp(cur)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
