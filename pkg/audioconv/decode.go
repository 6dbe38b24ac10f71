// Package audioconv decodes sound files into mono float32 PCM and converts
// between the sample formats used for capture, recognition and playback.
package audioconv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

// WhisperRate is the rate speech recognizers expect.
const WhisperRate = 16000

type Options struct {
	// Rate is the output sample rate; 0 keeps WhisperRate.
	Rate       int
	MaxSamples int
}

// DecodeFile reads a wav, mp3 or ogg (vorbis or opus) file as mono samples
// in [-1, 1] at opt.Rate. Unknown extensions are sniffed.
func DecodeFile(_ context.Context, path string, opt Options) ([]float32, error) {
	if opt.Rate <= 0 {
		opt.Rate = WhisperRate
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format != "wav" && format != "mp3" && format != "ogg" && format != "oga" {
		magic, _ := bufio.NewReader(f).Peek(4)
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		switch string(magic) {
		case "RIFF":
			format = "wav"
		case "OggS":
			format = "ogg"
		default:
			return nil, fmt.Errorf("unsupported format: %s (supported: wav/mp3/ogg)", filepath.Ext(path))
		}
	}

	var (
		pcm  []float32
		rate int
	)
	switch format {
	case "wav":
		pcm, rate, err = decodeWAV(f)
	case "mp3":
		pcm, rate, err = decodeMP3(f)
	default:
		pcm, rate, err = decodeOgg(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	out := Resample(pcm, rate, opt.Rate)
	if opt.MaxSamples > 0 && len(out) > opt.MaxSamples {
		out = out[:opt.MaxSamples]
	}
	return out, nil
}

func decodeOgg(f io.ReadSeeker) ([]float32, int, error) {
	pcm, rate, err := decodeOggVorbis(f)
	if err == nil {
		return pcm, rate, nil
	}
	if _, serr := f.Seek(0, io.SeekStart); serr != nil {
		return nil, 0, serr
	}
	pcm, rate, oerr := decodeOggOpus(f)
	if oerr != nil {
		return nil, 0, fmt.Errorf("neither vorbis (%v) nor opus: %w", err, oerr)
	}
	return pcm, rate, nil
}

func decodeWAV(r io.ReadSeeker) ([]float32, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("invalid wav")
	}
	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if pb == nil || len(pb.Data) == 0 {
		return nil, 0, errors.New("empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}
	channels, rate := 1, 44100
	if pb.Format != nil {
		channels = max(1, pb.Format.NumChannels)
		if pb.Format.SampleRate > 0 {
			rate = pb.Format.SampleRate
		}
	}
	return Downmix(intsToFloat32(pb.Data, depth), channels), rate, nil
}

func decodeMP3(r io.Reader) ([]float32, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return nil, 0, err
	}
	ints := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &ints); err != nil {
		return nil, 0, err
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}
	// go-mp3 always yields interleaved stereo
	return Downmix(FromInt16(ints), 2), rate, nil
}

func decodeOggVorbis(r io.Reader) ([]float32, int, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, 0, errors.New("invalid ogg/vorbis stream")
	}
	return Downmix(pcm, format.Channels), format.SampleRate, nil
}

func decodeOggOpus(r io.ReadSeeker) ([]float32, int, error) {
	const opusRate = 48000

	dec, err := popus.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}
	defer dec.Destroy()

	channels := max(1, dec.ChannelCount())
	buf := make([]int16, opusRate*channels/2)

	var pcm []float32
	for {
		n, err := dec.Read(buf) // samples per channel
		if n > 0 {
			pcm = append(pcm, FromInt16(buf[:n*channels])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
	}
	if len(pcm) == 0 {
		return nil, 0, errors.New("empty opus stream")
	}
	return Downmix(pcm, channels), opusRate, nil
}
