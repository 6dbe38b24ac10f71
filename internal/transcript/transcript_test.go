package transcript

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Hello, World!", "hello world"},
		{"  Ardomis...   are you there?? ", "ardomis are you there"},
		{"That's enough", "that s enough"},
		{"set timer 2 seconds for tea.", "set timer 2 seconds for tea"},
		{"café", "caf"},
		{"14:30", "14 30"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLooksLikeGarbage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too short", "ok", true},
		{"symbols only", "!@#$%", true},
		{"letters drowned in symbols", "asdf!@#$", true},
		{"digits only short", "12345", true},
		{"mostly non ascii", "こんにちは", true},
		{"sentence", "hello there friend", false},
		{"wake word", "ardo", false},
		{"question", "ardo?", false},
		{"trailing ellipsis", "ardo....", false},
		{"exclaimed", "Stop!!!!", false},
		{"short with marks", "No?!?!", false},
		{"only marks", "?!?!...", true},
		{"symbols before marks", "a#$%...", true},
		{"long digits", "1234567890 12", false},
		{"accented but mostly ascii", "I love café au lait", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeGarbage(tt.in); got != tt.want {
				t.Errorf("LooksLikeGarbage(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsTinyFiller(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"um", true},
		{"ok", true},
		{"okay", true},
		{"hi", true},
		{"hi there", false},
		{"ardo", false},
		{"stop", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsTinyFiller(tt.in); got != tt.want {
			t.Errorf("IsTinyFiller(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsPromptLeak(t *testing.T) {
	if !IsPromptLeak("transcribe english audio") {
		t.Error("expected prompt leak to be detected")
	}
	if IsPromptLeak("please transcribe english") {
		t.Error("only a leading hint counts as a leak")
	}
}

func TestNewTranscript(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tr := New("Ardo!", at)
	if tr.Raw != "Ardo!" || tr.Normalized != "ardo" || !tr.At.Equal(at) {
		t.Errorf("New = %+v", tr)
	}
}
