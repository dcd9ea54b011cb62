// Package mock provides a scriptable narrator for tests and for running the
// reader without an audio device.
package mock

import (
	"sync"
	"time"

	"github.com/dgnsrekt/narrate/tts"
	"github.com/dgnsrekt/narrate/tts/engines"
)

// DefaultWordsPerMinute paces automatic completion.
const DefaultWordsPerMinute = 180

// Narrator implements tts.Narrator without producing sound.
//
// In manual mode an utterance stays in flight until the test calls Complete,
// Fail or Boundary. In auto mode it completes on its own after a duration
// estimated from its length and rate.
type Narrator struct {
	mu      sync.Mutex
	handler func(tts.NarrationEvent)
	voices  []tts.Voice

	current uint64 // id of the utterance in flight
	paused  bool
	spoken  []tts.Utterance

	// Automatic completion
	auto  bool
	wpm   int
	timer *time.Timer

	// Control for testing
	failure     error
	callCount   int
	cancelCount int
	pauseCount  int
}

// New creates a narrator in manual mode.
func New() *Narrator {
	return &Narrator{
		voices: []tts.Voice{
			{ID: "mock-en", Name: "Mock English", Lang: "en-US"},
			{ID: "mock-zh", Name: "Mock Xiaoxiao", Lang: "zh-CN"},
			{ID: "mock-ja", Name: "Mock Japanese", Lang: "ja-JP"},
		},
	}
}

// NewAuto creates a narrator that completes every utterance after the time
// it would take to read at wpm words per minute.
func NewAuto(wpm int) *Narrator {
	n := New()
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	n.auto = true
	n.wpm = wpm
	return n
}

// SetEventHandler registers the receiver of narration events.
func (n *Narrator) SetEventHandler(fn func(tts.NarrationEvent)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handler = fn
}

// Speak records u and makes it the utterance in flight.
func (n *Narrator) Speak(u tts.Utterance) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.callCount++
	if n.failure != nil {
		return n.failure
	}
	n.stopTimer()
	n.current = u.ID
	n.paused = false
	n.spoken = append(n.spoken, u)

	if n.auto {
		id := u.ID
		n.timer = time.AfterFunc(n.estimateDuration(u), func() {
			n.emit(id, tts.NarrationEvent{Kind: tts.EventEnd, UtteranceID: id})
		})
	}
	return nil
}

// Cancel drops the utterance in flight.
func (n *Narrator) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelCount++
	n.stopTimer()
	n.current = 0
	n.paused = false
}

// Pause halts the utterance in flight.
func (n *Narrator) Pause() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pauseCount++
	n.stopTimer()
	n.paused = true
}

// Voices returns the mock voices.
func (n *Narrator) Voices() []tts.Voice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]tts.Voice, len(n.voices))
	copy(out, n.voices)
	return out
}

// Test control methods

// SetVoices replaces the voice list.
func (n *Narrator) SetVoices(voices []tts.Voice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.voices = voices
}

// SetFailure makes every later Speak call return err.
func (n *Narrator) SetFailure(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failure = err
}

// ClearFailure resets the narrator to normal operation.
func (n *Narrator) ClearFailure() {
	n.SetFailure(nil)
}

// Complete finishes the utterance in flight. It reports false when there is
// none.
func (n *Narrator) Complete() bool {
	id := n.takeCurrent()
	if id == 0 {
		return false
	}
	n.deliver(tts.NarrationEvent{Kind: tts.EventEnd, UtteranceID: id})
	return true
}

// Fail fails the utterance in flight with err.
func (n *Narrator) Fail(err error) bool {
	id := n.takeCurrent()
	if id == 0 {
		return false
	}
	n.deliver(tts.NarrationEvent{Kind: tts.EventError, UtteranceID: id, Err: err})
	return true
}

// Boundary reports progress at charIndex in the utterance in flight.
func (n *Narrator) Boundary(charIndex int) bool {
	n.mu.Lock()
	id := n.current
	n.mu.Unlock()
	if id == 0 {
		return false
	}
	n.deliver(tts.NarrationEvent{Kind: tts.EventBoundary, UtteranceID: id, CharIndex: charIndex})
	return true
}

// Emit delivers ev as is, whatever is in flight.
func (n *Narrator) Emit(ev tts.NarrationEvent) {
	n.deliver(ev)
}

// Spoken returns every utterance passed to Speak.
func (n *Narrator) Spoken() []tts.Utterance {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]tts.Utterance, len(n.spoken))
	copy(out, n.spoken)
	return out
}

// Last returns the most recent utterance.
func (n *Narrator) Last() (tts.Utterance, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.spoken) == 0 {
		return tts.Utterance{}, false
	}
	return n.spoken[len(n.spoken)-1], true
}

// InFlight returns the id of the utterance in flight, 0 when none.
func (n *Narrator) InFlight() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// IsPaused reports whether Pause was called since the last Speak or Cancel.
func (n *Narrator) IsPaused() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.paused
}

// GetCallCount returns the number of Speak calls.
func (n *Narrator) GetCallCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.callCount
}

// CancelCount returns the number of Cancel calls.
func (n *Narrator) CancelCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cancelCount
}

// PauseCount returns the number of Pause calls.
func (n *Narrator) PauseCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pauseCount
}

func (n *Narrator) takeCurrent() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.current
	n.current = 0
	n.stopTimer()
	return id
}

// emit delivers ev if id is still in flight.
func (n *Narrator) emit(id uint64, ev tts.NarrationEvent) {
	n.mu.Lock()
	if n.current != id || n.paused {
		n.mu.Unlock()
		return
	}
	n.current = 0
	n.timer = nil
	n.mu.Unlock()
	n.deliver(ev)
}

// deliver calls the handler without holding the lock, since the handler
// usually calls back into Speak.
func (n *Narrator) deliver(ev tts.NarrationEvent) {
	n.mu.Lock()
	fn := n.handler
	n.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (n *Narrator) stopTimer() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

// estimateDuration estimates speaking time at the configured pace.
func (n *Narrator) estimateDuration(u tts.Utterance) time.Duration {
	return engines.EstimateDuration(u.Text, n.wpm, u.Rate)
}
