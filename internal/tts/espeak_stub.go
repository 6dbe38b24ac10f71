//go:build !espeak

package tts

import "errors"

// NewEspeak needs the binary built with -tags espeak and libespeak-ng
// installed.
func NewEspeak(string) (Speaker, error) {
	return nil, errors.New("espeak support not compiled in (build with -tags espeak)")
}
