// Package dialogue talks to the language-model service that writes
// Ardomis's replies.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	"ardomis/internal/memory"
	"ardomis/internal/resilience"
)

var ErrEmptyReply = errors.New("empty reply from dialogue service")

const (
	retryInstruction = "Do not repeat earlier assistant wording. Answer the user directly in one short natural response."
	Deflection       = "I heard you. Give me one second and ask that again plainly."
)

// Client is one dialogue backend. deep selects the slower reasoning model.
type Client interface {
	Reply(ctx context.Context, system string, history []memory.Message, user string, deep bool) (string, error)
}

// Responder wraps a Client with retries, a circuit breaker, reply cleanup
// and the repeat guard.
type Responder struct {
	client  Client
	retry   resilience.RetryConfig
	breaker *resilience.Breaker
}

func NewResponder(client Client, retry resilience.RetryConfig, breaker *resilience.Breaker) *Responder {
	if breaker == nil {
		breaker = resilience.NewBreaker("dialogue", resilience.DefaultBreakerConfig())
	}
	return &Responder{client: client, retry: retry, breaker: breaker}
}

// Reply answers user. When the answer repeats the previous assistant turn it
// asks once more with an explicit instruction and then gives up with
// Deflection.
func (r *Responder) Reply(ctx context.Context, system string, history []memory.Message, user string, deep bool) (string, error) {
	reply, err := r.ask(ctx, system, history, user, deep)
	if err != nil {
		return "", err
	}

	last := lastAssistant(history)
	if !sameReply(reply, last) {
		return reply, nil
	}

	log.Debug("Dialogue repeated itself, retrying", "reply", reply)
	retry, err := r.ask(ctx, system, history, user+"\n\n"+retryInstruction, deep)
	if err == nil && !sameReply(retry, last) {
		return retry, nil
	}
	return Deflection, nil
}

// Raw asks the backend once without the repeat guard.
func (r *Responder) Raw(ctx context.Context, system string, history []memory.Message, user string) (string, error) {
	return r.ask(ctx, system, history, user, false)
}

func (r *Responder) ask(ctx context.Context, system string, history []memory.Message, user string, deep bool) (string, error) {
	out, err := resilience.Do(r.breaker, func() (string, error) {
		return resilience.RetryValue(ctx, r.retry, func() (string, error) {
			return r.client.Reply(ctx, system, history, user, deep)
		})
	})
	if err != nil {
		return "", fmt.Errorf("dialogue: %w", err)
	}

	out = Humanize(out)
	if out == "" {
		return "", ErrEmptyReply
	}
	return out, nil
}

func lastAssistant(history []memory.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == memory.RoleAssistant {
			return history[i].Content
		}
	}
	return ""
}

func sameReply(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	return a != "" && a == strings.ToLower(strings.TrimSpace(b))
}

// ChimeWriter adapts a Responder into a chime line generator that sees the
// current persona prompt and conversation.
type ChimeWriter struct {
	Responder *Responder
	System    func() string
	History   func() []memory.Message
}

func (w ChimeWriter) Generate(ctx context.Context, instruction string) (string, error) {
	var history []memory.Message
	if w.History != nil {
		history = w.History()
	}
	return w.Responder.Raw(ctx, w.System(), history, instruction)
}
