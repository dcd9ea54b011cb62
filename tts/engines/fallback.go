package engines

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/narrate/tts"
)

// Fallback wraps a primary synthesizer and switches to a secondary one after
// the primary fails maxFailures times in a row. Both must share a sample
// rate.
type Fallback struct {
	primary     Synthesizer
	secondary   Synthesizer
	maxFailures int

	mu            sync.Mutex
	failures      int
	usingFallback bool
}

// NewFallback creates a fallback synthesizer.
func NewFallback(primary, secondary Synthesizer, maxFailures int) *Fallback {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Fallback{primary: primary, secondary: secondary, maxFailures: maxFailures}
}

// Synthesize implements Synthesizer.
func (f *Fallback) Synthesize(ctx context.Context, text string, voice tts.Voice, rate float64) ([]byte, error) {
	f.mu.Lock()
	using := f.usingFallback
	f.mu.Unlock()
	if using {
		return f.secondary.Synthesize(ctx, text, voice, rate)
	}

	pcm, err := f.primary.Synthesize(ctx, text, voice, rate)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		if f.failures > 0 {
			log.Info("primary synthesizer recovered", "engine", f.primary.Name(), "failures", f.failures)
			f.failures = 0
		}
		return pcm, nil
	}

	f.failures++
	log.Warn("primary synthesizer failed", "engine", f.primary.Name(), "attempt", f.failures, "max", f.maxFailures, "err", err)
	if f.failures < f.maxFailures {
		return nil, err
	}

	log.Warn("switching to fallback synthesizer", "engine", f.secondary.Name())
	f.usingFallback = true
	pcm, ferr := f.secondary.Synthesize(ctx, text, voice, rate)
	if ferr != nil {
		return nil, fmt.Errorf("both synthesizers failed: %w", ferr)
	}
	return pcm, nil
}

// Voices returns the primary's voices so the voice list stays stable across a
// switch.
func (f *Fallback) Voices() []tts.Voice {
	return f.primary.Voices()
}

// SampleRate implements Synthesizer.
func (f *Fallback) SampleRate() int { return f.primary.SampleRate() }

// Name implements Synthesizer.
func (f *Fallback) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

// Reset goes back to the primary synthesizer.
func (f *Fallback) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = 0
	f.usingFallback = false
	log.Info("reset to primary synthesizer", "engine", f.primary.Name())
}

// Status describes which synthesizer is active.
func (f *Fallback) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usingFallback {
		return fmt.Sprintf("Using fallback engine (primary failed %d times)", f.failures)
	}
	return fmt.Sprintf("Using primary engine (failures: %d/%d)", f.failures, f.maxFailures)
}
