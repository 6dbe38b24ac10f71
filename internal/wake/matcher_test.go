package wake

import "testing"

func TestMatch(t *testing.T) {
	m := NewMatcher(DefaultOptions())

	tests := []struct {
		in   string
		want Strategy
	}{
		{"ardo", Exact},
		{"Ardomis, are you there?", Exact},
		{"hey ardomiss", Substring},
		{"art oh miss", Variant},
		{"arm a miss can you hear me", Variant},
		{"ardemus", FuzzyToken},
		{"ardumus", FuzzyToken},
		{"hey ard omiss", FuzzyBigram},
		{"banana", None},
		{"what time is it", None},
		{"", None},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := m.Match(tt.in)
			if got.Strategy != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.in, got.Strategy, tt.want)
			}
			if got.Matched != (tt.want != None) {
				t.Errorf("Match(%q).Matched = %v", tt.in, got.Matched)
			}
		})
	}
}

func TestSaid(t *testing.T) {
	m := NewMatcher(DefaultOptions())

	tests := []struct {
		in   string
		want bool
	}{
		{"ardo", true},
		{"art oh miss", true},
		{"ardomus", true},
		{"banana", false},
	}

	for _, tt := range tests {
		if got := m.Said(tt.in); got != tt.want {
			t.Errorf("Said(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFuzzyIgnoresShortTokens(t *testing.T) {
	m := NewMatcher(Options{Words: []string{"ardo"}, Variants: []string{}})

	if m.Said("ardx") {
		t.Error("four-letter tokens must not be fuzzy matched")
	}
	if got := m.Match("arduo").Strategy; got != FuzzyToken {
		t.Errorf("arduo strategy = %v, want fuzzy-token", got)
	}
}

func TestCustomWords(t *testing.T) {
	m := NewMatcher(Options{Words: []string{"Jarvis"}, Variants: []string{}})

	if !m.Said("jarvis") {
		t.Error("configured word should match exactly")
	}
	if m.Said("ardo") {
		t.Error("default words must not leak into a custom matcher")
	}
	if got := m.Match("jarvs please").Strategy; got != FuzzyToken {
		t.Errorf("jarvs strategy = %v, want fuzzy-token", got)
	}
}

func TestStrategyString(t *testing.T) {
	if FuzzyBigram.String() != "fuzzy-bigram" || None.String() != "none" {
		t.Error("unexpected strategy names")
	}
}
