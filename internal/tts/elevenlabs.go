package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ardomis/internal/resilience"
)

const (
	elevenLabsURL = "https://api.elevenlabs.io/v1/text-to-speech/"
	// LeadSilence keeps the first syllable from being clipped while the
	// output device wakes up.
	LeadSilence = 100 * time.Millisecond
)

var ErrNotConfigured = errors.New("elevenlabs api key or voice id missing")

// MP3Player plays an mp3 stream preceded by lead silence.
type MP3Player interface {
	PlayMP3(ctx context.Context, rc io.ReadCloser, lead time.Duration) error
}

type ElevenLabs struct {
	APIKey  string
	VoiceID string
	ModelID string
	BaseURL string
	Lead    time.Duration

	http   *http.Client
	player MP3Player
	retry  resilience.RetryConfig
}

func NewElevenLabs(apiKey, voiceID, modelID string, hc *http.Client, player MP3Player) *ElevenLabs {
	if hc == nil {
		hc = &http.Client{Timeout: 35 * time.Second}
	}
	if modelID == "" {
		modelID = "eleven_turbo_v2_5"
	}
	return &ElevenLabs{
		APIKey:  apiKey,
		VoiceID: voiceID,
		ModelID: modelID,
		BaseURL: elevenLabsURL,
		Lead:    LeadSilence,
		http:    hc,
		player:  player,
		retry:   resilience.DefaultRetryConfig(),
	}
}

type synthRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

func (e *ElevenLabs) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if e.APIKey == "" || e.VoiceID == "" {
		return ErrNotConfigured
	}

	audio, err := resilience.RetryValue(ctx, e.retry, func() ([]byte, error) {
		return e.synthesize(ctx, text)
	})
	if err != nil {
		return fmt.Errorf("elevenlabs: %w", err)
	}

	return e.player.PlayMP3(ctx, io.NopCloser(bytes.NewReader(audio)), e.Lead)
}

func (e *ElevenLabs) synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthRequest{Text: text, ModelID: e.ModelID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+e.VoiceID, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", e.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &resilience.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("empty audio response")
	}
	return audio, nil
}
