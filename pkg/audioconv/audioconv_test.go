package audioconv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeWAVDecodeFile(t *testing.T) {
	samples := []int16{0, 16384, -16384, 32767, -32768, 8192}

	data, err := EncodeWAV(samples, WhisperRate)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE header: %q", data[:12])
	}

	dir := t.TempDir()
	for _, name := range []string{"speech.wav", "speech.bin"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}

		got, err := DecodeFile(context.Background(), path, Options{})
		if err != nil {
			t.Fatalf("DecodeFile(%s): %v", name, err)
		}
		if len(got) != len(samples) {
			t.Fatalf("%s: decoded %d samples, want %d", name, len(got), len(samples))
		}
		if got[1] != 0.5 || got[2] != -0.5 {
			t.Errorf("%s: samples = %v", name, got)
		}
	}
}

func TestDecodeFileErrors(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(junk, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := DecodeFile(context.Background(), junk, Options{}); err == nil {
		t.Error("expected unsupported format error")
	}
	if _, err := DecodeFile(context.Background(), filepath.Join(dir, "missing.wav"), Options{}); err == nil {
		t.Error("expected open error")
	}
	if _, err := EncodeWAV(nil, WhisperRate); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestResample(t *testing.T) {
	in := []float32{0, 1, 0, -1}

	tests := []struct {
		name     string
		from, to int
		wantLen  int
	}{
		{"same rate", 16000, 16000, 4},
		{"up", 16000, 32000, 8},
		{"down", 48000, 16000, 2},
		{"bad rate", 0, 16000, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resample(in, tt.from, tt.to); len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}

	up := Resample(in, 1, 2)
	if up[1] != 0.5 || up[7] != -1 {
		t.Errorf("interpolated = %v", up)
	}
}

func TestDownmixAndScale(t *testing.T) {
	got := Downmix([]float32{1, 0, 0.5, 0.5, -1, 1}, 2)
	want := []float32{0.5, 0.5, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Downmix = %v, want %v", got, want)
		}
	}

	f := FromInt16([]int16{-32768, 0, 16384})
	if f[0] != -1 || f[1] != 0 || f[2] != 0.5 {
		t.Errorf("FromInt16 = %v", f)
	}
}
