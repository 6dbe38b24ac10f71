package runtime

import (
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

var zeroTime time.Time

// listen waits out the post-speech cooldown, captures one utterance and
// transcribes it. heard is false only when nobody started speaking within
// maxWait; a failed transcription still counts as heard.
func (c *Controller) listen(ctx context.Context, maxWait time.Duration) (text string, heard bool) {
	if wait := c.ignoreAudioUntil.Sub(c.now()); wait > 0 {
		c.sleep(ctx, wait)
	}

	samples, err := c.Listener.Capture(ctx, maxWait)
	if err != nil && len(samples) == 0 {
		if !errors.Is(err, context.Canceled) {
			c.report("Audio capture failed", err)
		}
		return "", false
	}
	if len(samples) == 0 {
		return "", false
	}

	sctx, cancel := context.WithTimeout(ctx, c.opt.ServiceTimeout)
	defer cancel()

	text, err = c.STT.Transcribe(sctx, samples, c.Listener.SampleRate(), "")
	if err != nil {
		c.report("Transcription failed", err)
		return "", true
	}
	return strings.TrimSpace(text), true
}

// say speaks text and starts the cooldown that keeps the microphone from
// hearing it.
func (c *Controller) say(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	log.Info("Ardomis", "text", text)

	c.publish("SPEAKING", "ON")
	sctx, cancel := context.WithTimeout(ctx, c.opt.ServiceTimeout)
	if err := c.Speaker.Speak(sctx, text); err != nil {
		c.report("Speech failed", err)
	}
	cancel()
	c.publish("SPEAKING", "OFF")

	c.ignoreAudioUntil = c.now().Add(c.opt.Cooldown)
}

// chime interrupts presence with an effect or an unprompted line.
func (c *Controller) chime(ctx context.Context) {
	plan := c.Planner.Plan(*c.Mood, c.History.LastUser())

	if plan.Effect != "" && c.Effects != nil {
		log.Info("Chime", "effect", plan.Effect)
		sctx, cancel := context.WithTimeout(ctx, c.opt.ServiceTimeout)
		if err := c.Effects.Play(sctx, plan.Effect); err != nil {
			log.Warn("Sound effect failed", "effect", plan.Effect, "err", err)
		}
		cancel()
		c.ignoreAudioUntil = c.now().Add(c.opt.Cooldown)
		return
	}
	if plan.Effect != "" {
		plan = c.Planner.PlanLine(*c.Mood, c.History.LastUser())
	}

	sctx, cancel := context.WithTimeout(ctx, c.opt.ServiceTimeout)
	line := c.Planner.Line(sctx, c.Chime, plan)
	cancel()

	log.Info("Chime", "category", plan.Category)
	c.say(ctx, line)
}

func (c *Controller) publishMode() {
	c.publish("MODE", strings.ToUpper(c.mode.String()))
}

func (c *Controller) publish(noun, arg string) {
	if c.Publisher == nil {
		return
	}
	if err := c.Publisher.Publish("SET", noun, arg); err != nil {
		log.Debug("Status publish failed", "noun", noun, "err", err)
	}
}

// report logs a collaborator failure and forwards it to Sentry. The loop
// always carries on.
func (c *Controller) report(msg string, err error) {
	log.Warn(msg, "err", err)
	sentry.CaptureException(err)
}
