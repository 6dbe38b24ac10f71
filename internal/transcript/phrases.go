package transcript

import "strings"

// PhraseSet is a list of control phrases stored in normalized form.
type PhraseSet []string

func NewPhraseSet(phrases ...string) PhraseSet {
	out := make(PhraseSet, 0, len(phrases))
	for _, p := range phrases {
		if n := Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Equals matches only when the whole transcript is one of the phrases.
func (ps PhraseSet) Equals(norm string) bool {
	for _, p := range ps {
		if norm == p {
			return true
		}
	}
	return false
}

// Matches accepts an exact phrase or a phrase followed by more words
// ("stop talking" matches "stop", "stopwatch" does not).
func (ps PhraseSet) Matches(norm string) bool {
	for _, p := range ps {
		if norm == p || strings.HasPrefix(norm, p+" ") {
			return true
		}
	}
	return false
}

var (
	Stop      = NewPhraseSet("stop", "that's enough", "thats enough", "enough")
	Sleep     = NewPhraseSet("sleep ardomis", "sleep ardo", "go to sleep", "power down")
	Serious   = NewPhraseSet("im being serious", "i'm being serious", "i am being serious", "actually stop", "take me serious")
	QuietDown = NewPhraseSet("actually shut up")
	Quit      = NewPhraseSet("quit", "exit")
	Status    = NewPhraseSet("mood check", "how you feeling", "status")
	Meter     = NewPhraseSet("emotion meter", "full status", "state dump")
	DeepMode  = NewPhraseSet("deep mode", "big brain", "use reasoner")
)

// WantsDeep reports whether the user asked for the slower reasoning model
// anywhere in the utterance.
func WantsDeep(norm string) bool {
	padded := " " + norm + " "
	for _, p := range DeepMode {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}
