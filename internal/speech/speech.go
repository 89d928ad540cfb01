// Package speech adapts platform speech synthesis and recognition.
package speech

import (
	"context"
	"errors"
)

// ErrUnsupported means the platform cannot capture speech. Callers tell the
// user and do not start listening.
var ErrUnsupported = errors.New("speech recognition is not supported on this platform")

// Synthesizer speaks text aloud. Speak returns immediately; playback may
// still be running when it returns.
type Synthesizer interface {
	Speak(text string)
}

// Voice is an installed synthesis voice.
type Voice struct {
	Name     string
	Language string
}

// SelectVoice returns the voice whose name matches exactly, or the first
// (default) voice. ok is false only when voices is empty.
func SelectVoice(voices []Voice, name string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	for _, v := range voices {
		if v.Name == name {
			return v, true
		}
	}
	return voices[0], true
}

// Result is one recognition event. Only Final results are command input.
type Result struct {
	Transcript string
	Final      bool
}

// Recognizer captures audio and emits transcripts until the stream ends.
// Recognize returns nil on a benign end of stream and ctx.Err() when
// cancelled.
type Recognizer interface {
	Recognize(ctx context.Context, results chan<- Result) error
}

// Mute is a Synthesizer that drops everything.
type Mute struct{}

func (Mute) Speak(string) {}
