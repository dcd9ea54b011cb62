// Package engines defines how speech audio is produced and holds the
// synthesizers that need no external program.
package engines

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/dgnsrekt/narrate/tts"
)

// Synthesizer turns text into mono 16-bit little-endian PCM.
type Synthesizer interface {
	// Synthesize renders text with voice at rate, where 1 is the voice's
	// natural pace.
	Synthesize(ctx context.Context, text string, voice tts.Voice, rate float64) ([]byte, error)
	Voices() []tts.Voice
	SampleRate() int
	Name() string
}

// BytesPerSample is the size of one PCM16 mono frame.
const BytesPerSample = 2

// Duration returns the playing time of pcm at sampleRate.
func Duration(pcm []byte, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	samples := len(pcm) / BytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// EstimateDuration guesses how long text takes to say at wpm words per
// minute, counting one word per five characters.
func EstimateDuration(text string, wpm int, rate float64) time.Duration {
	words := utf8.RuneCountInString(text) / 5
	if words < 1 {
		words = 1
	}
	if rate <= 0 {
		rate = 1
	}
	if wpm <= 0 {
		wpm = 180
	}
	seconds := float64(words) * 60.0 / float64(wpm) / rate
	return time.Duration(seconds * float64(time.Second))
}
