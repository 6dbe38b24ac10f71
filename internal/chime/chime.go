// Package chime plans the unprompted remarks made while the companion sits in
// presence mode: when the next one is due and what it should be.
package chime

import (
	"context"
	"fmt"
	log "log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"ardomis/internal/emotion"
	"ardomis/internal/transcript"
)

const (
	MinDelay    = 12 * time.Second
	lowestRange = 20 * time.Second

	maxRestraint = 0.55
	maxEagerness = 0.45
	recentLines  = 8
)

// Effects are the short sounds that can stand in for a spoken line.
var Effects = []string{"beep", "laser", "robot", "glitch"}

// Resting composites, so a calm device stays inside the configured range.
var (
	restingIrk    = irk(emotion.Baseline())
	restingLonely = lonely(emotion.Baseline())
)

type Category int

const (
	RandomThought Category = iota
	CheckIn
	Question
	Tease
	Observation
	Callback
	Introspection
)

var categoryNames = [...]string{"random-thought", "check-in", "question", "tease", "observation", "callback", "introspection"}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", int(c))
}

var hints = map[Category]string{
	RandomThought: "Share a weird or silly passing thought.",
	CheckIn:       "Gently check in on the user.",
	Question:      "Ask the user one short curious question.",
	Tease:         "Lightly tease the user, affectionate not mean.",
	Observation:   "Make a short observation about the quiet room or the time of day.",
	Callback:      "Bring up the recent topic again in a casual way.",
	Introspection: "Say something brief about how you are feeling right now.",
}

var fallbacks = map[Category]string{
	RandomThought: "random thought: bananas are nature's boomerangs.",
	CheckIn:       "check-in: you good over there?",
	Question:      "quick question: what are you working on?",
	Tease:         "you've gone suspiciously quiet.",
	Observation:   "the room feels suspiciously calm.",
	Callback:      "still thinking about what you said earlier.",
	Introspection: "i'm still on standby, just so you know.",
}

var (
	openers = []string{"quick thought", "random thought", "tiny interruption", "side quest", "check-in"}
	middles = []string{"bananas are nature's boomerangs", "time is fake but snacks are real", "you good over there", "i'm still on standby", "the room feels suspiciously calm"}
)

// Plan is a decided chime: either an effect to play or a line to speak.
type Plan struct {
	Effect      string
	Category    Category
	Instruction string
}

// Generator produces one spoken line for an instruction.
type Generator interface {
	Generate(ctx context.Context, instruction string) (string, error)
}

type Planner struct {
	rng      *rand.Rand
	min, max time.Duration
	recent   []string
}

// NewPlanner draws delays from [lo, hi]. A nil rng is seeded from the clock.
func NewPlanner(lo, hi time.Duration, rng *rand.Rand) *Planner {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	return &Planner{rng: rng, min: lo, max: hi}
}

// NextDelay draws the wait until the next chime. An irritated companion holds
// back longer; a bored or lonely one speaks up sooner.
func (p *Planner) NextDelay(s emotion.State) time.Duration {
	low := max(lowestRange, min(p.min, p.max))
	high := max(low, p.max)

	base := float64(low) + p.rng.Float64()*float64(high-low)
	d := time.Duration(base * restraint(s) * eagerness(s))
	return max(MinDelay, d)
}

// Plan picks a sound effect or a line category for the next chime.
func (p *Planner) Plan(s emotion.State, topic string) Plan {
	if p.rng.Float64() < effectOdds(s) {
		return Plan{Effect: Effects[p.rng.IntN(len(Effects))]}
	}

	return p.PlanLine(s, topic)
}

// PlanLine always plans a spoken line, for outputs that cannot play effects.
func (p *Planner) PlanLine(s emotion.State, topic string) Plan {
	cat := p.pick(weights(s, topic != ""))
	return Plan{Category: cat, Instruction: instruction(cat, topic)}
}

// Line asks gen for the planned line and falls back to a local line when
// generation fails or repeats something said recently.
func (p *Planner) Line(ctx context.Context, gen Generator, plan Plan) string {
	line := ""
	if gen != nil {
		out, err := gen.Generate(ctx, plan.Instruction)
		if err != nil {
			log.Warn("Chime generation failed", "category", plan.Category, "error", err)
		}
		line = strings.Trim(strings.TrimSpace(out), " '\"")
	}

	if line == "" || p.isRecent(line) {
		line = fallbacks[plan.Category]
		if p.isRecent(line) {
			line = p.composed()
		}
	}

	p.remember(line)
	return line
}

func (p *Planner) composed() string {
	var line string
	for range recentLines {
		line = openers[p.rng.IntN(len(openers))] + ": " + middles[p.rng.IntN(len(middles))] + "."
		if !p.isRecent(line) {
			break
		}
	}
	return line
}

func (p *Planner) isRecent(line string) bool {
	key := transcript.Normalize(line)
	for _, r := range p.recent {
		if r == key {
			return true
		}
	}
	return false
}

func (p *Planner) remember(line string) {
	p.recent = append(p.recent, transcript.Normalize(line))
	if len(p.recent) > recentLines {
		p.recent = p.recent[len(p.recent)-recentLines:]
	}
}

func (p *Planner) pick(w [len(categoryNames)]float64) Category {
	var total float64
	for _, v := range w {
		total += v
	}
	r := p.rng.Float64() * total
	for i, v := range w {
		if r < v {
			return Category(i)
		}
		r -= v
	}
	return RandomThought
}

func weights(s emotion.State, hasTopic bool) [len(categoryNames)]float64 {
	var w [len(categoryNames)]float64
	w[RandomThought] = 1 + s.Playfulness/50
	w[CheckIn] = 1 + s.Warmth/50 + s.Loneliness/60
	w[Question] = 1 + s.Curiosity/40
	w[Tease] = (s.Sass/40 + s.Playfulness/80) * (1 - s.Seriousness/100)
	w[Observation] = 1 + s.Focus/80
	if hasTopic {
		w[Callback] = 1 + s.Affection/60
	}
	w[Introspection] = s.Boredom/40 + s.Loneliness/80
	return w
}

func instruction(cat Category, topic string) string {
	var b strings.Builder
	b.WriteString("Generate exactly ONE short presence-mode line (6-16 words). ")
	b.WriteString(hints[cat])
	if cat == Callback && topic != "" {
		fmt.Fprintf(&b, " Recent topic: %q.", topic)
	}
	b.WriteString(" Do not repeat common assistant cliches. No emojis. No hashtags. Return only the spoken line.")
	return b.String()
}

func effectOdds(s emotion.State) float64 {
	return 0.18 + s.Playfulness/500 + max(0, s.Excitement-40)/600
}

func irk(s emotion.State) float64    { return (s.Annoyance + s.Irritation + s.Sass) / 300 }
func lonely(s emotion.State) float64 { return (s.Boredom + s.Loneliness) / 200 }

func restraint(s emotion.State) float64 {
	return 1 + min(maxRestraint, max(0, irk(s)-restingIrk))
}

func eagerness(s emotion.State) float64 {
	return 1 - min(maxEagerness, max(0, lonely(s)-restingLonely))
}
