package runtime

import (
	"context"
	log "log/slog"

	"ardomis/internal/commands"
	"ardomis/internal/transcript"
)

func (c *Controller) presenceTick(ctx context.Context) {
	if !c.nextChimeAt.IsZero() && !c.now().Before(c.nextChimeAt) {
		c.chime(ctx)
		c.responseWindowUntil = c.now().Add(c.opt.ResponseWindow)
		c.scheduleChime()
	}

	raw, _ := c.listen(ctx, c.opt.PresencePoll)
	tr, ok := c.accept(raw, func(norm string) bool {
		return c.Wake.Said(raw) || transcript.Sleep.Matches(norm)
	})
	if !ok {
		return
	}
	norm := tr.Normalized

	switch {
	case transcript.QuietDown.Equals(norm):
		c.Mood.QuietDown()
		c.saveMood()
		c.say(ctx, lineQuietDown)

	case transcript.Serious.Equals(norm):
		c.Mood.GetSerious()
		c.saveMood()
		c.setMode(Chat)
		c.say(ctx, lineSeriousIn)

	// In presence "stop" asks for attention rather than silence.
	case transcript.Stop.Matches(norm):
		c.responseWindowUntil = zeroTime
		c.setMode(Chat)
		c.say(ctx, lineStopPresent)

	case transcript.Sleep.Matches(norm):
		c.responseWindowUntil = zeroTime
		c.say(ctx, lineSleep)

	case c.Wake.Said(raw):
		c.responseWindowUntil = zeroTime
		c.setMode(Chat)
		c.say(ctx, lineWake)

	case !c.now().After(c.responseWindowUntil):
		log.Debug("Reply to chime treated as wake", "text", raw)
		c.responseWindowUntil = zeroTime
		c.setMode(Chat)
		c.say(ctx, lineListening)
	}
}

func (c *Controller) chatTick(ctx context.Context) bool {
	raw, heard := c.listen(ctx, c.opt.ChatIdleTimeout)
	if !heard {
		log.Info("Chat idle, fading out")
		c.say(ctx, lineIdle)
		c.toPresence()
		return false
	}

	tr, ok := c.accept(raw, func(norm string) bool {
		return transcript.Stop.Matches(norm) || transcript.Sleep.Matches(norm)
	})
	if !ok {
		return false
	}
	norm := tr.Normalized

	switch {
	case transcript.QuietDown.Equals(norm):
		c.Mood.QuietDown()
		c.saveMood()
		c.say(ctx, lineQuietDown)

	case transcript.Serious.Equals(norm):
		c.Mood.GetSerious()
		c.saveMood()
		c.say(ctx, lineSerious)

	case transcript.Stop.Matches(norm):
		c.say(ctx, lineBackground)
		c.toPresence()

	case transcript.Sleep.Matches(norm):
		c.say(ctx, lineSleep)
		c.toPresence()

	case transcript.Quit.Equals(norm):
		c.say(ctx, lineQuit)
		return true

	case transcript.Status.Equals(norm):
		c.say(ctx, c.Mood.MoodLine())

	case transcript.Meter.Equals(norm):
		c.say(ctx, c.Mood.Meter())

	default:
		c.converse(ctx, tr)
	}
	return false
}

// converse tries the local commands first and the dialogue service second.
func (c *Controller) converse(ctx context.Context, tr transcript.Transcript) {
	if c.Commands != nil {
		if res := c.Commands.Handle(ctx, tr.Normalized, tr.Raw); res.Handled {
			c.say(ctx, res.Response)
			if res.NextMode == commands.ToPresence {
				c.toPresence()
			}
			return
		}
	}

	c.Mood.OnInteraction(1)
	c.saveMood()

	history := c.History.Messages()
	system := c.Persona.SystemPrompt(*c.Mood)

	sctx, cancel := context.WithTimeout(ctx, c.opt.ServiceTimeout)
	reply, err := c.Dialogue.Reply(sctx, system, history, tr.Raw, transcript.WantsDeep(tr.Normalized))
	cancel()

	if err := c.History.AddUser(ctx, tr.Raw); err != nil {
		log.Warn("Failed to store user turn", "err", err)
	}
	if err != nil {
		c.report("Dialogue failed", err)
		c.say(ctx, lineBrainFail)
		return
	}
	if err := c.History.AddAssistant(ctx, reply); err != nil {
		log.Warn("Failed to store reply", "err", err)
	}
	c.say(ctx, reply)
}

// accept runs the drop filters. exempt names phrases that bypass the filler
// filter in the current mode.
func (c *Controller) accept(raw string, exempt func(norm string) bool) (transcript.Transcript, bool) {
	if raw == "" {
		return transcript.Transcript{}, false
	}
	tr := transcript.New(raw, c.now())

	switch {
	case transcript.IsPromptLeak(tr.Normalized):
		log.Debug("Dropped transcript", "reason", "prompt leak", "text", raw)
	case transcript.LooksLikeGarbage(raw):
		log.Debug("Dropped transcript", "reason", "garbage", "text", raw)
	case transcript.IsTinyFiller(tr.Normalized) && !exempt(tr.Normalized):
		log.Debug("Dropped transcript", "reason", "filler", "text", raw)
	case c.dedupe.Suppress(tr.Normalized, tr.At):
		log.Debug("Dropped transcript", "reason", "dedupe", "text", raw)
	default:
		log.Info("Heard", "mode", c.mode, "text", raw)
		return tr, true
	}
	return tr, false
}
