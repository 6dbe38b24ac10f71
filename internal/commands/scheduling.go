package commands

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"ardomis/internal/schedule"
	"ardomis/internal/transcript"
)

const pendingLimit = 12

// Patterns run on normalized text, where "14:30" has become "14 30".
var (
	timerRe     = regexp.MustCompile(`^set timer (\d+) (seconds?|minutes?)(?: for (.+))?$`)
	wordTimerRe = regexp.MustCompile(`^set (?:a )?timer(?: for)? ([a-z0-9]+(?: [a-z]+)?) (seconds?|minutes?)(?: for (.+))?$`)
	remindInRe  = regexp.MustCompile(`^remind me in (\d+) (minutes?) to (.+)$`)
	alarmRe     = regexp.MustCompile(`^set (?:an )?alarm (?:for )?(\d{1,2}) (\d{2})(?: for (.+))?$`)
	remindAtRe  = regexp.MustCompile(`^remind me at (\d{4}) (\d{1,2}) (\d{1,2}) (\d{1,2}) (\d{2}) to (.+)$`)
	listPhrases = transcript.NewPhraseSet("show reminders", "show alarms", "show timers", "schedule", "show schedule")
)

var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50, "sixty": 60,
}

// parseNumber reads "5", "five" or "twenty one".
func parseNumber(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	parts := strings.Fields(s)
	switch len(parts) {
	case 1:
		n, ok := numberWords[parts[0]]
		return n, ok
	case 2:
		tens, ok1 := numberWords[parts[0]]
		ones, ok2 := numberWords[parts[1]]
		if ok1 && ok2 && tens >= 20 && tens%10 == 0 && ones > 0 && ones < 10 {
			return tens + ones, true
		}
	}
	return 0, false
}

func (d *Dispatcher) scheduleCmd(ctx context.Context, norm, _ string) (Result, bool) {
	if d.sched == nil {
		return Result{}, false
	}

	if m := timerRe.FindStringSubmatch(norm); m != nil {
		return d.timer(ctx, atoi(m[1]), m[2], m[3]), true
	}

	if m := wordTimerRe.FindStringSubmatch(norm); m != nil {
		qty, ok := parseNumber(m[1])
		if !ok {
			return said("Couldn't parse that number. Try 'set timer 5 minutes'."), true
		}
		return d.timer(ctx, qty, m[2], m[3]), true
	}

	if m := remindInRe.FindStringSubmatch(norm); m != nil {
		mins := atoi(m[1])
		note := strings.TrimSpace(m[3])
		it, err := d.sched.AddReminderIn(ctx, mins, note)
		if err != nil {
			return failed("Couldn't set that reminder", err), true
		}
		return said(fmt.Sprintf("Reminder #%d in %d minutes: %s", it.ID, mins, note)), true
	}

	if m := alarmRe.FindStringSubmatch(norm); m != nil {
		hhmm := fmt.Sprintf("%02d:%s", atoi(m[1]), m[2])
		label := orDefault(m[3], "alarm")
		it, err := d.sched.AddAlarm(ctx, hhmm, label)
		if err != nil {
			return failed("Couldn't set alarm", err), true
		}
		return said(fmt.Sprintf("Alarm #%d set for %s: %s", it.ID, hhmm, label)), true
	}

	if m := remindAtRe.FindStringSubmatch(norm); m != nil {
		when := fmt.Sprintf("%s-%02d-%02d %02d:%s", m[1], atoi(m[2]), atoi(m[3]), atoi(m[4]), m[5])
		note := strings.TrimSpace(m[6])
		it, err := d.sched.AddReminderAt(ctx, when, note)
		if err != nil {
			return failed("Couldn't set that", err), true
		}
		return said(fmt.Sprintf("Reminder #%d at %s: %s", it.ID, when, note)), true
	}

	if listPhrases.Equals(norm) {
		items, err := d.sched.ListPending(ctx, pendingLimit)
		if err != nil {
			return failed("Couldn't read the schedule", err), true
		}
		if len(items) == 0 {
			return said("Nothing pending."), true
		}
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = fmt.Sprintf("#%d [%s] %s", it.ID, it.Kind, it.Text)
		}
		return said(strings.Join(parts, "; ")), true
	}

	return Result{}, false
}

func (d *Dispatcher) timer(ctx context.Context, qty int, unit, note string) Result {
	note = orDefault(note, "timer done")
	seconds := qty
	if strings.HasPrefix(unit, "minute") {
		seconds = math.MaxInt
		if qty <= math.MaxInt/60 {
			seconds = qty * 60
		}
	}
	it, err := d.sched.AddTimer(ctx, seconds, note)
	if err != nil {
		return failed("Couldn't set that timer", err)
	}
	return said(fmt.Sprintf("Timer #%d set for %d %s: %s", it.ID, qty, unit, note))
}

// failed turns a scheduler error into something worth saying aloud.
func failed(prefix string, err error) Result {
	if errors.Is(err, schedule.ErrTooFar) {
		return said(prefix + ": that's more than a year away.")
	}
	if errors.Is(err, schedule.ErrInvalidTime) {
		return said(prefix + ": that time doesn't exist.")
	}
	log.Warn("Scheduler command failed", "err", err)
	return said(prefix + ": storage error.")
}

// atoi is for regexp groups that are already known to be digits. Values too
// large for an int saturate so range checks downstream still reject them.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt
	}
	return n
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
