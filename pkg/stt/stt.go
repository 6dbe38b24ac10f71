// Package stt turns captured speech into text.
package stt

import (
	"context"
	"errors"
)

var ErrEmptyAudio = errors.New("no audio samples provided")

// Transcriber recognizes mono int16 audio recorded at rate. hint biases
// recognition and may be empty.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []int16, rate int, hint string) (string, error)
}
