// Package wake decides whether a transcript addressed the device.
//
// Matching is purely textual and tolerant of STT noise. Strategies run from
// cheapest to most expensive and the first hit wins:
//
//  1. a wake word as a whole token
//  2. a wake word as a substring (merged or split words)
//  3. a curated mis-transcription as a substring
//  4. bounded edit distance against single tokens
//  5. bounded edit distance against adjacent token pairs
package wake

import (
	"strings"

	"ardomis/internal/transcript"
)

type Strategy int

const (
	None Strategy = iota
	Exact
	Substring
	Variant
	FuzzyToken
	FuzzyBigram
)

func (s Strategy) String() string {
	switch s {
	case Exact:
		return "exact"
	case Substring:
		return "substring"
	case Variant:
		return "variant"
	case FuzzyToken:
		return "fuzzy-token"
	case FuzzyBigram:
		return "fuzzy-bigram"
	default:
		return "none"
	}
}

type Result struct {
	Matched  bool
	Strategy Strategy
}

// DefaultWords are the names the device answers to.
var DefaultWords = []string{"ardomis", "ardo"}

// DefaultVariants are mis-transcriptions seen in practice.
var DefaultVariants = []string{
	// two-word reads of "ardomis"
	"art miss", "artmiss", "art-miss",
	"art oh miss", "art oh mis", "art oh mist",
	"ardo miss", "ardomiss",
	"art o miss", "arm a miss", "arma miss",
	// two-word and short reads of "ardo"
	"art oh", "artoh", "art-oh",
	"art o", "arto",
	"ard oh", "arda", "ardoh",
	// single-word near misses
	"ardomus", "ardemis", "ardumis", "ardimus",
	"ardomas", "ardamis",
}

type Options struct {
	Words       []string
	Variants    []string
	MaxDistance int // accept at or below this edit distance
	MinTokenLen int // shortest token considered for fuzzy matching
	MaxLenGap   int // length difference that rejects without computing
	MaxBigram   int // longest merged token pair considered
}

func DefaultOptions() Options {
	return Options{
		Words:       DefaultWords,
		Variants:    DefaultVariants,
		MaxDistance: 2,
		MinTokenLen: 5,
		MaxLenGap:   4,
		MaxBigram:   10,
	}
}

type Matcher struct {
	words    []string
	variants []string
	opt      Options
}

func NewMatcher(opt Options) *Matcher {
	def := DefaultOptions()
	if len(opt.Words) == 0 {
		opt.Words = def.Words
	}
	if opt.Variants == nil {
		opt.Variants = def.Variants
	}
	if opt.MaxDistance <= 0 {
		opt.MaxDistance = def.MaxDistance
	}
	if opt.MinTokenLen <= 0 {
		opt.MinTokenLen = def.MinTokenLen
	}
	if opt.MaxLenGap <= 0 {
		opt.MaxLenGap = def.MaxLenGap
	}
	if opt.MaxBigram <= 0 {
		opt.MaxBigram = def.MaxBigram
	}

	return &Matcher{
		words:    normalizeAll(opt.Words),
		variants: normalizeAll(opt.Variants),
		opt:      opt,
	}
}

// Said is a convenience for callers that only need the verdict.
func (m *Matcher) Said(raw string) bool {
	return m.Match(raw).Matched
}

func (m *Matcher) Match(raw string) Result {
	norm := transcript.Normalize(raw)
	if norm == "" {
		return Result{}
	}
	tokens := strings.Fields(norm)

	for _, tok := range tokens {
		for _, w := range m.words {
			if tok == w {
				return Result{true, Exact}
			}
		}
	}

	for _, w := range m.words {
		if strings.Contains(norm, w) {
			return Result{true, Substring}
		}
	}

	for _, v := range m.variants {
		if strings.Contains(norm, v) {
			return Result{true, Variant}
		}
	}

	for _, tok := range tokens {
		if len(tok) >= m.opt.MinTokenLen && m.closeToWake(tok) {
			return Result{true, FuzzyToken}
		}
	}

	for i := 0; i+1 < len(tokens); i++ {
		merged := tokens[i] + tokens[i+1]
		if len(merged) < m.opt.MinTokenLen || len(merged) > m.opt.MaxBigram {
			continue
		}
		if m.closeToWake(merged) {
			return Result{true, FuzzyBigram}
		}
	}

	return Result{}
}

func (m *Matcher) closeToWake(s string) bool {
	for _, w := range m.words {
		if _, ok := boundedDistance(s, w, m.opt.MaxDistance, m.opt.MaxLenGap); ok {
			return true
		}
	}
	return false
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := transcript.Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}
