package ui

import (
	"math"
	"sync"

	"github.com/dgnsrekt/narrate/tts"
)

const (
	minRate  = 0.5
	maxRate  = 2.0
	rateStep = 0.1
)

// Controls are the reader's narration controls. The controller snapshots
// them when a session starts.
type Controls struct {
	mu        sync.Mutex
	voices    []tts.Voice
	voice     int // index into voices, -1 for the narrator's default
	preferred string
	rate      float64
	pitch     float64
}

// NewControls returns controls that ask for the voice with the given id or
// name once it is offered.
func NewControls(voice string, rate, pitch float64) *Controls {
	return &Controls{voice: -1, preferred: voice, rate: rate, pitch: pitch}
}

// Settings implements tts.SettingsSource.
func (c *Controls) Settings() tts.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := tts.Settings{Rate: c.rate, Pitch: c.pitch}
	if c.voice >= 0 && c.voice < len(c.voices) {
		s.Voice = c.voices[c.voice]
	}
	return s
}

// SetVoices replaces the offered voices, keeping the selection when the
// selected voice is still offered.
func (c *Controls) SetVoices(voices []tts.Voice) {
	c.mu.Lock()
	defer c.mu.Unlock()

	want := c.preferred
	if c.voice >= 0 && c.voice < len(c.voices) {
		want = c.voices[c.voice].ID
	}
	c.voices = append([]tts.Voice(nil), voices...)
	c.voice = -1
	if want == "" {
		return
	}
	for i, v := range c.voices {
		if v.ID == want || v.Name == want {
			c.voice = i
			return
		}
	}
}

// NextVoice selects the next offered voice.
func (c *Controls) NextVoice() (tts.Voice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.voices) == 0 {
		return tts.Voice{}, false
	}
	c.voice = (c.voice + 1) % len(c.voices)
	return c.voices[c.voice], true
}

// Voice returns the selected voice.
func (c *Controls) Voice() (tts.Voice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voice < 0 || c.voice >= len(c.voices) {
		return tts.Voice{}, false
	}
	return c.voices[c.voice], true
}

// AdjustRate changes the rate by delta within the supported range and
// returns the new rate.
func (c *Controls) AdjustRate(delta float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := math.Round((c.rate+delta)*10) / 10
	c.rate = math.Max(minRate, math.Min(maxRate, r))
	return c.rate
}

// Rate returns the selected rate.
func (c *Controls) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}
