// Package transcript canonicalizes speech-to-text output and decides which
// transcripts are worth acting on.
package transcript

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Transcript is one recognized utterance.
type Transcript struct {
	Raw        string
	Normalized string
	At         time.Time
}

func New(raw string, at time.Time) Transcript {
	return Transcript{Raw: raw, Normalized: Normalize(raw), At: at}
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize lowercases text, collapses every run of non [a-z0-9] characters
// into one space and trims. All matchers key on this form.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = nonAlnumRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

const (
	minChars          = 3
	maxNonASCIIRatio  = 0.25
	shortSymbolLength = 10
	trailingMarks     = ".!?,…"
)

// LooksLikeGarbage reports whether a raw transcript is most likely an STT
// hallucination from noise or speaker bleed.
func LooksLikeGarbage(raw string) bool {
	value := []rune(strings.TrimSpace(raw))
	if len(value) < minChars {
		return true
	}

	var nonASCII, alpha, symbols int
	for _, r := range value {
		if r > unicode.MaxASCII {
			nonASCII++
		}
		switch {
		case unicode.IsLetter(r):
			alpha++
		case !unicode.IsDigit(r) && !unicode.IsSpace(r):
			symbols++
		}
	}

	if float64(nonASCII)/float64(len(value)) > maxNonASCIIRatio {
		return true
	}
	if len(value) < shortSymbolLength {
		if alpha == 0 {
			return true
		}
		// short strings that are at least half punctuation ("asdf!@#$"),
		// not counting the trailing ellipses and marks STT likes to add
		body := []rune(strings.TrimRight(string(value), trailingMarks))
		marks := symbols - (len(value) - len(body))
		if marks > 0 && marks*2 >= len(body) {
			return true
		}
	}
	return false
}

var fillers = map[string]struct{}{
	"hey": {}, "hi": {}, "yo": {}, "yeah": {}, "yah": {}, "yep": {}, "nope": {},
	"huh": {}, "um": {}, "uh": {}, "but": {}, "ok": {}, "okay": {},
}

// IsTinyFiller reports whether a normalized transcript is a single
// acknowledgement or noise word.
func IsTinyFiller(norm string) bool {
	parts := strings.Fields(norm)
	if len(parts) != 1 {
		return false
	}
	_, ok := fillers[parts[0]]
	return ok
}

// IsPromptLeak catches the STT echoing its own language hint back.
func IsPromptLeak(norm string) bool {
	return strings.HasPrefix(norm, "transcribe english")
}
