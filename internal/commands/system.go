package commands

import (
	"context"
	"fmt"
	log "log/slog"
	"regexp"
	"strconv"
	"strings"

	"ardomis/internal/transcript"
)

const helpText = "Commands: time | volume <0-100> | mute | unmute | turn up/down the volume | " +
	"set timer <n> minutes/seconds for <note> | remind me in <n> minutes to <note> | " +
	"set alarm HH:MM for <note> | remind me at YYYY-MM-DD HH:MM to <note> | " +
	"show schedule | mood check | state dump."

var (
	helpPhrases = transcript.NewPhraseSet("help", "commands", "what can you do", "capabilities",
		"list me your commands", "what are your commands", "show commands")
	timePhrases   = transcript.NewPhraseSet("time", "current time", "what time is it")
	mutePhrases   = transcript.NewPhraseSet("mute", "silence", "go mute", "mute yourself")
	unmutePhrases = transcript.NewPhraseSet("unmute", "unmute yourself", "unsilence")
	volumeQueries = transcript.NewPhraseSet("what's the volume", "whats the volume", "current volume", "volume status", "volume")

	turnUpRe   = regexp.MustCompile(`^turn up(?: the)? volume$`)
	turnDownRe = regexp.MustCompile(`^turn down(?: the)? volume$`)
	setVolRe   = regexp.MustCompile(`^(?:set )?volume (\d{1,3})$`)
)

func (d *Dispatcher) help(_ context.Context, norm, _ string) (Result, bool) {
	if !helpPhrases.Equals(norm) {
		return Result{}, false
	}
	return said(helpText), true
}

func (d *Dispatcher) timeCmd(_ context.Context, norm, _ string) (Result, bool) {
	if !strings.Contains(" "+norm+" ", " what time ") && !timePhrases.Equals(norm) {
		return Result{}, false
	}
	now := d.now().In(d.loc)
	return said(fmt.Sprintf("It is %s on %s (%s).", now.Format("03:04 PM"), now.Format("Monday, January 02, 2006"), d.loc)), true
}

func (d *Dispatcher) volumeCmd(ctx context.Context, norm, _ string) (Result, bool) {
	if d.volume == nil {
		return Result{}, false
	}

	switch {
	case mutePhrases.Equals(norm):
		return d.setVolume(ctx, 0, "Muted."), true
	case unmutePhrases.Equals(norm):
		return d.setVolume(ctx, 60, "Back."), true
	case turnUpRe.MatchString(norm):
		return d.setVolume(ctx, 80, ""), true
	case turnDownRe.MatchString(norm):
		return d.setVolume(ctx, 40, ""), true
	case volumeQueries.Equals(norm):
		level, err := d.volume.Volume(ctx)
		if err != nil {
			log.Warn("Failed to read volume", "err", err)
			return said("I can't reach the mixer right now."), true
		}
		return said(fmt.Sprintf("Volume is at %d%%.", level)), true
	}

	m := setVolRe.FindStringSubmatch(norm)
	if m == nil {
		return Result{}, false
	}
	level, _ := strconv.Atoi(m[1])
	if level > 100 {
		return said("Give me a number between 0 and 100."), true
	}
	return d.setVolume(ctx, level, ""), true
}

func (d *Dispatcher) setVolume(ctx context.Context, level int, ok string) Result {
	if err := d.volume.SetVolume(ctx, level); err != nil {
		log.Warn("Failed to set volume", "level", level, "err", err)
		return said(fmt.Sprintf("Couldn't change the volume to %d%%.", level))
	}
	if ok == "" {
		ok = fmt.Sprintf("Volume set to %d%%.", level)
	}
	return said(ok)
}
