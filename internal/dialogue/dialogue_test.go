package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ardomis/internal/emotion"
	"ardomis/internal/memory"
	"ardomis/internal/resilience"
)

type scriptClient struct {
	replies []string
	errs    []error
	users   []string
	deep    []bool
}

func (c *scriptClient) Reply(_ context.Context, _ string, _ []memory.Message, user string, deep bool) (string, error) {
	i := len(c.users)
	c.users = append(c.users, user)
	c.deep = append(c.deep, deep)
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	if i < len(c.replies) {
		return c.replies[i], err
	}
	return "", err
}

func noRetry() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxRetries = 0
	return cfg
}

func TestResponderRepeatGuard(t *testing.T) {
	history := []memory.Message{
		{Role: memory.RoleUser, Content: "hey"},
		{Role: memory.RoleAssistant, Content: "Yeah, I'm here."},
	}

	tests := []struct {
		name    string
		replies []string
		want    string
		calls   int
	}{
		{"fresh reply", []string{"Sure thing."}, "Sure thing.", 1},
		{"repeat then fresh", []string{"yeah, I'm here.", "Ask me anything."}, "Ask me anything.", 2},
		{"repeat twice", []string{"Yeah, I'm here.", "Yeah, I'm here."}, Deflection, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &scriptClient{replies: tt.replies}
			r := NewResponder(c, noRetry(), nil)

			got, err := r.Reply(context.Background(), "sys", history, "you there", false)
			if err != nil {
				t.Fatalf("Reply: %v", err)
			}
			if got != tt.want {
				t.Errorf("Reply = %q, want %q", got, tt.want)
			}
			if len(c.users) != tt.calls {
				t.Fatalf("calls = %d, want %d", len(c.users), tt.calls)
			}
			if tt.calls == 2 && !strings.HasSuffix(c.users[1], retryInstruction) {
				t.Errorf("retry prompt = %q", c.users[1])
			}
		})
	}
}

func TestResponderErrors(t *testing.T) {
	boom := errors.New("boom")
	c := &scriptClient{errs: []error{boom}}
	r := NewResponder(c, noRetry(), nil)

	if _, err := r.Reply(context.Background(), "sys", nil, "hi", false); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}

	c = &scriptClient{replies: []string{"(sighs)"}}
	r = NewResponder(c, noRetry(), nil)
	if _, err := r.Reply(context.Background(), "sys", nil, "hi", false); !errors.Is(err, ErrEmptyReply) {
		t.Errorf("err = %v, want ErrEmptyReply", err)
	}
}

func TestResponderBreakerOpens(t *testing.T) {
	c := &scriptClient{errs: []error{errors.New("a"), errors.New("b")}}
	br := resilience.NewBreaker("test", resilience.BreakerConfig{Threshold: 2})
	r := NewResponder(c, noRetry(), br)

	for range 2 {
		r.Reply(context.Background(), "sys", nil, "hi", false)
	}
	if _, err := r.Reply(context.Background(), "sys", nil, "hi", false); !errors.Is(err, resilience.ErrOpen) {
		t.Errorf("err = %v, want ErrOpen", err)
	}
	if len(c.users) != 2 {
		t.Errorf("calls = %d, want 2", len(c.users))
	}
}

func TestChimeWriter(t *testing.T) {
	c := &scriptClient{replies: []string{"*yawns* Quiet in here, huh?"}}
	w := ChimeWriter{
		Responder: NewResponder(c, noRetry(), nil),
		System:    func() string { return "sys" },
	}

	got, err := w.Generate(context.Background(), "say something")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Quiet in here, huh?" {
		t.Errorf("Generate = %q", got)
	}
	if c.deep[0] {
		t.Error("chime lines should use the fast model")
	}
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  hello\n\nthere  ", "hello there"},
		{"(leans in) I am here.", "I'm here."},
		{"[static] It is fine *shrugs* really", "It's fine really"},
		{"You are right, I do not know.", "You're right, I don't know."},
		{"i would not do that", "i wouldn't do that"},
		{"What is up? It is late.", "What's up? It's late."},
		{"we cannot stop", "we can't stop"},
	}
	for _, tt := range tests {
		if got := Humanize(tt.in); got != tt.want {
			t.Errorf("Humanize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSystemPrompt(t *testing.T) {
	s := emotion.Baseline()
	got := DefaultPersona.SystemPrompt(s)
	for _, want := range []string{"You are Ardomis.", s.MoodLine(), s.Meter()} {
		if !strings.Contains(got, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}
