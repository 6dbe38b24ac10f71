package stt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

func TestEmptyAudio(t *testing.T) {
	backends := map[string]Transcriber{
		"openai":  NewOpenAI(openai.NewClient(), ""),
		"whisper": &Whisper{},
	}
	for name, tr := range backends {
		if _, err := tr.Transcribe(context.Background(), nil, 16000, ""); !errors.Is(err, ErrEmptyAudio) {
			t.Errorf("%s: err = %v, want ErrEmptyAudio", name, err)
		}
	}
}

func TestOpenAIRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":{"message":"busy"}}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":"  set a timer  "}`)
	}))
	defer srv.Close()

	client := openai.NewClient(
		option.WithAPIKey("test"),
		option.WithBaseURL(srv.URL+"/"),
		option.WithMaxRetries(0),
	)
	o := NewOpenAI(client, "")
	o.retry.BaseDelay = time.Millisecond

	text, err := o.Transcribe(context.Background(), make([]int16, 1600), 16000, "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "set a timer" {
		t.Errorf("text = %q", text)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}
