package engines

import (
	"context"
	"errors"
	"strings"

	"github.com/dgnsrekt/narrate/tts"
)

// Silence renders every text as silence lasting as long as it would take to
// say. It keeps narration timing intact when no real voice is available.
type Silence struct {
	sampleRate int
	wpm        int
}

// NewSilence creates a silence synthesizer.
func NewSilence(sampleRate, wordsPerMinute int) *Silence {
	if sampleRate <= 0 {
		sampleRate = 22050
	}
	return &Silence{sampleRate: sampleRate, wpm: wordsPerMinute}
}

// Synthesize implements Synthesizer.
func (s *Silence) Synthesize(ctx context.Context, text string, _ tts.Voice, rate float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("nothing to synthesize")
	}
	d := EstimateDuration(text, s.wpm, rate)
	samples := int(d.Seconds() * float64(s.sampleRate))
	return make([]byte, samples*BytesPerSample), nil
}

// Voices implements Synthesizer.
func (s *Silence) Voices() []tts.Voice {
	return []tts.Voice{{ID: "silence", Name: "Silence", Lang: "und"}}
}

// SampleRate implements Synthesizer.
func (s *Silence) SampleRate() int { return s.sampleRate }

// Name implements Synthesizer.
func (s *Silence) Name() string { return "silence" }
