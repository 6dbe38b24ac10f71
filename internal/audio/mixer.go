package audio

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const maxVolume = 150

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

// Pactl runs one pactl invocation and returns its stdout.
type Pactl func(ctx context.Context, args ...string) ([]byte, error)

func execPactl(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "pactl", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("pactl %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

type sinkInput struct {
	ID      int
	Volume  int
	AppName string
}

type fade struct {
	id       int
	from, to int
}

// Mixer controls PulseAudio output: the default sink's level for volume
// commands, and ducking of other applications while the companion speaks.
type Mixer struct {
	pactl     Pactl
	selfNames []string
	minVolume int

	mu       sync.Mutex
	ducked   bool
	original map[int]int
}

// NewMixer leaves sink inputs whose application.name is in selfNames alone
// when ducking.
func NewMixer(selfNames []string) *Mixer {
	return &Mixer{
		pactl:     execPactl,
		selfNames: append([]string(nil), selfNames...),
		minVolume: 5,
		original:  make(map[int]int),
	}
}

// WithPactl swaps the pactl runner.
func (m *Mixer) WithPactl(p Pactl) *Mixer {
	m.pactl = p
	return m
}

// Volume reports the default sink level in percent.
func (m *Mixer) Volume(ctx context.Context) (int, error) {
	out, err := m.pactl(ctx, "get-sink-volume", "@DEFAULT_SINK@")
	if err != nil {
		return 0, err
	}
	match := percentRe.FindStringSubmatch(string(out))
	if match == nil {
		return 0, fmt.Errorf("no volume in pactl output %q", strings.TrimSpace(string(out)))
	}
	return strconv.Atoi(match[1])
}

func (m *Mixer) SetVolume(ctx context.Context, percent int) error {
	percent = clampVolume(percent)
	if _, err := m.pactl(ctx, "set-sink-mute", "@DEFAULT_SINK@", boolArg(percent == 0)); err != nil {
		return err
	}
	_, err := m.pactl(ctx, "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", percent))
	return err
}

// Duck fades every other sink input to factor of its level over d.
func (m *Mixer) Duck(ctx context.Context, factor float64, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ducked {
		return nil
	}

	inputs, err := m.sinkInputs(ctx)
	if err != nil {
		return err
	}

	m.original = make(map[int]int)
	var fades []fade
	for _, in := range inputs {
		if m.isSelf(in) {
			continue
		}
		to := int(math.Round(float64(in.Volume) * factor))
		to = clampVolume(max(m.minVolume, to))
		m.original[in.ID] = in.Volume
		fades = append(fades, fade{id: in.ID, from: in.Volume, to: to})
	}

	if err := m.fade(ctx, fades, d); err != nil {
		return err
	}
	m.ducked = true
	return nil
}

// Restore fades ducked inputs back to where they were. Inputs that appeared
// after Duck are not touched.
func (m *Mixer) Restore(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ducked {
		return nil
	}

	inputs, err := m.sinkInputs(ctx)
	if err != nil {
		return err
	}

	var fades []fade
	for _, in := range inputs {
		if orig, ok := m.original[in.ID]; ok && !m.isSelf(in) {
			fades = append(fades, fade{id: in.ID, from: in.Volume, to: orig})
		}
	}

	err = m.fade(ctx, fades, d)
	m.original = make(map[int]int)
	m.ducked = false
	return err
}

func (m *Mixer) isSelf(in sinkInput) bool {
	for _, name := range m.selfNames {
		if in.AppName == name {
			return true
		}
	}
	return false
}

func (m *Mixer) fade(ctx context.Context, fades []fade, d time.Duration) error {
	if len(fades) == 0 {
		return nil
	}

	const minStep = 10 * time.Millisecond

	steps := max(1, int(d/minStep))
	if d <= 0 {
		steps = 0
	}

	for i := 0; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frac := 1.0
		if steps > 0 {
			frac = float64(i) / float64(steps)
		}
		for _, f := range fades {
			v := int(math.Round(float64(f.from) + float64(f.to-f.from)*frac))
			if err := m.setSinkInputVolume(ctx, f.id, v); err != nil {
				return fmt.Errorf("set volume id=%d: %w", f.id, err)
			}
		}

		if i < steps {
			time.Sleep(d / time.Duration(steps))
		}
	}
	return nil
}

func (m *Mixer) sinkInputs(ctx context.Context) ([]sinkInput, error) {
	out, err := m.pactl(ctx, "list", "sink-inputs")
	if err != nil {
		return nil, err
	}
	return parseSinkInputs(string(out)), nil
}

func (m *Mixer) setSinkInputVolume(ctx context.Context, id, percent int) error {
	_, err := m.pactl(ctx, "set-sink-input-volume", strconv.Itoa(id), fmt.Sprintf("%d%%", clampVolume(percent)))
	return err
}

// parseSinkInputs reads `pactl list sink-inputs` output.
func parseSinkInputs(text string) []sinkInput {
	blocks := strings.Split(text, "Sink Input #")
	var res []sinkInput

	for _, block := range blocks[1:] {
		header, body, ok := strings.Cut(block, "\n")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(header))
		if err != nil {
			continue
		}

		in := sinkInput{ID: id}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)

			if strings.HasPrefix(line, "Volume:") && in.Volume == 0 {
				if match := percentRe.FindStringSubmatch(line); match != nil {
					in.Volume, _ = strconv.Atoi(match[1])
				}
			}
			if strings.HasPrefix(line, "application.name =") && in.AppName == "" {
				if _, rest, ok := strings.Cut(line, `"`); ok {
					in.AppName, _, _ = strings.Cut(rest, `"`)
				}
			}
		}

		if in.Volume == 0 && in.AppName == "" {
			continue
		}
		res = append(res, in)
	}
	return res
}

func clampVolume(v int) int {
	return max(0, min(maxVolume, v))
}

func boolArg(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
