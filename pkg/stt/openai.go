package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"

	"ardomis/internal/resilience"
	"ardomis/pkg/audioconv"
)

// OpenAI sends each utterance as a wav file to the transcription endpoint.
// English is forced so noise does not drift into other languages.
type OpenAI struct {
	client openai.Client
	model  string
	retry  resilience.RetryConfig
}

func NewOpenAI(client openai.Client, model string) *OpenAI {
	if model == "" {
		model = "gpt-4o-transcribe"
	}
	return &OpenAI{client: client, model: model, retry: resilience.DefaultRetryConfig()}
}

func (o *OpenAI) Transcribe(ctx context.Context, samples []int16, rate int, hint string) (string, error) {
	if len(samples) == 0 {
		return "", ErrEmptyAudio
	}

	data, err := audioconv.EncodeWAV(samples, rate)
	if err != nil {
		return "", err
	}

	text, err := resilience.RetryValue(ctx, o.retry, func() (string, error) {
		params := openai.AudioTranscriptionNewParams{
			File:     openai.File(bytes.NewReader(data), "speech.wav", "audio/wav"),
			Model:    openai.AudioModel(o.model),
			Language: openai.String("en"),
		}
		if hint != "" {
			params.Prompt = openai.String(hint)
		}
		resp, err := o.client.Audio.Transcriptions.New(ctx, params)
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return strings.TrimSpace(text), nil
}
