package audio

import (
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	"github.com/gordonklaus/portaudio"
)

var ErrNoInputDevice = errors.New("no input-capable audio device found")

// PickInput prefers the first input device whose name contains one of
// keywords (case-insensitive), then any input device.
func PickInput(devices []*portaudio.DeviceInfo, keywords []string) (*portaudio.DeviceInfo, error) {
	for _, dev := range devices {
		if dev.MaxInputChannels < 1 {
			continue
		}
		for _, kw := range keywords {
			if kw != "" && strings.Contains(strings.ToLower(dev.Name), strings.ToLower(kw)) {
				return dev, nil
			}
		}
	}
	for _, dev := range devices {
		if dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}
	return nil, ErrNoInputDevice
}

// Microphone is a FrameSource over a portaudio int16 input stream.
type Microphone struct {
	stream *portaudio.Stream
	buf    []int16
	pos    int
	Device string
}

// OpenMicrophone initializes portaudio and starts a mono stream on the
// best matching input device. Close releases both.
func OpenMicrophone(keywords []string, sampleRate, framesPerBuffer int) (*Microphone, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("list audio devices: %w", err)
	}
	dev, err := PickInput(devices, keywords)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: framesPerBuffer,
	}

	m := &Microphone{buf: make([]int16, framesPerBuffer), Device: dev.Name}
	m.pos = len(m.buf)

	m.stream, err = portaudio.OpenStream(params, m.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open input stream on %q: %w", dev.Name, err)
	}
	if err := m.stream.Start(); err != nil {
		m.stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	log.Info("Microphone open", "device", dev.Name, "rate", sampleRate)
	return m, nil
}

func (m *Microphone) Read(frame []int16) error {
	for n := 0; n < len(frame); {
		if m.pos >= len(m.buf) {
			if err := m.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
				return fmt.Errorf("read microphone: %w", err)
			}
			m.pos = 0
		}
		c := copy(frame[n:], m.buf[m.pos:])
		m.pos += c
		n += c
	}
	return nil
}

// Flush restarts the stream so audio captured while we were speaking or
// thinking is not read as the next utterance.
func (m *Microphone) Flush() error {
	if err := m.stream.Stop(); err != nil {
		return fmt.Errorf("stop input stream: %w", err)
	}
	m.pos = len(m.buf)
	if err := m.stream.Start(); err != nil {
		return fmt.Errorf("restart input stream: %w", err)
	}
	return nil
}

func (m *Microphone) Close() error {
	err := m.stream.Stop()
	if cerr := m.stream.Close(); err == nil {
		err = cerr
	}
	portaudio.Terminate()
	return err
}
