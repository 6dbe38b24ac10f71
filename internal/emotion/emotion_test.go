package emotion

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDriftTowardBaseline(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	s := Baseline()
	s.Drift(start) // first call only stamps the clock
	s.Mood = 90
	s.Boredom = 20
	s.Excitement = 41

	s.Drift(start.Add(10 * time.Minute))

	if !near(s.Mood, 76) {
		t.Errorf("mood = %v, want 76 after 10m at 1.4/min", s.Mood)
	}
	if !near(s.Boredom, 32) {
		t.Errorf("boredom = %v, want 32 after 10m at 1.2/min", s.Boredom)
	}
	if s.Excitement != 40 {
		t.Errorf("excitement = %v, want to settle at 40 without overshoot", s.Excitement)
	}
	if s.Sass != 70 {
		t.Errorf("sass drifted to %v", s.Sass)
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDriftIgnoresClockGoingBackwards(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Baseline()
	s.Drift(now)
	s.Mood = 80
	s.Drift(now.Add(-time.Hour))
	if s.Mood != 80 {
		t.Errorf("mood = %v, want unchanged", s.Mood)
	}
}

func TestReactions(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*State)
		check func(State) bool
	}{
		{"interaction", func(s *State) { s.OnInteraction(1) }, func(s State) bool {
			return s.Excitement == 56 && s.Boredom == 0 && s.Loneliness == 0 && s.Patience == 61
		}},
		{"quiet down", (*State).QuietDown, func(s State) bool {
			return s.Annoyance == 10 && s.Sass == 50 && s.Irritation == 0 && s.Playfulness == 45
		}},
		{"serious", (*State).GetSerious, func(s State) bool {
			return s.Seriousness == 75 && s.Sass == 48 && s.Playfulness == 35 && s.Annoyance == 20
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Baseline()
			tt.apply(&s)
			if !tt.check(s) {
				t.Errorf("unexpected state %+v", s)
			}
		})
	}
}

func TestMoodLine(t *testing.T) {
	s := Baseline()
	if got, want := s.MoodLine(), "mood=decent(55), energy=awake(55), sass=sharp(70)"; got != want {
		t.Errorf("MoodLine() = %q, want %q", got, want)
	}

	s.Mood = 10
	s.Boredom = 90
	s.Irritation = 60
	got := s.MoodLine()
	if !strings.HasPrefix(got, "mood=dark(10)") || !strings.HasSuffix(got, ", bored/prickly") {
		t.Errorf("MoodLine() = %q", got)
	}
}

func TestMeter(t *testing.T) {
	s := Baseline()
	got := s.Meter()
	for _, part := range []string{"full state:", "mood=55", "jealousy=10", "loneliness=25"} {
		if !strings.Contains(got, part) {
			t.Errorf("Meter() = %q missing %q", got, part)
		}
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "state.json")
	st := NewStore(path)

	s := st.Load()
	if s.Mood != 55 || s.LastTS == 0 {
		t.Fatalf("fresh load = %+v", s)
	}

	s.Mood = 81
	if err := st.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := st.Load(); got.Mood != 81 {
		t.Errorf("reloaded mood = %v, want 81", got.Mood)
	}
}

func TestStoreFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"mood": 12, "last_ts": 1700000000}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path).Load()
	if s.Mood != 12 || s.Sass != 70 || s.LastTS != 1700000000 {
		t.Errorf("load = %+v", s)
	}

	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	if s := NewStore(path).Load(); s.Mood != 55 {
		t.Errorf("corrupt file mood = %v, want baseline", s.Mood)
	}
}
