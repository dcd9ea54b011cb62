package audio

import (
	"context"
	"sync"
	"time"
)

// PlayerState is the state of a MockPlayer.
type PlayerState int32

const (
	StateStopped PlayerState = iota
	StatePlaying
	StatePaused
)

// String returns the string representation of the state.
func (s PlayerState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// MockPlayer stands in for Player without an audio device. By default a
// clip plays for its real duration at the mock's sample rate scaled by the
// speed factor. With Hold set, clips play until Finish is called.
type MockPlayer struct {
	mu         sync.Mutex
	sampleRate int
	speed      float64
	hold       bool
	err        error

	state  PlayerState
	stop   chan struct{}
	finish chan struct{}
	// wake is closed and replaced on every pause and resume.
	wake   chan struct{}
	played [][]byte

	pauseCount  int
	resumeCount int
	stopCount   int
}

// NewMockPlayer creates a mock player for mono PCM16 at sampleRate.
func NewMockPlayer(sampleRate int) *MockPlayer {
	return &MockPlayer{sampleRate: sampleRate, speed: 1}
}

// SetSpeed makes clips play factor times faster than real time.
func (m *MockPlayer) SetSpeed(factor float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if factor > 0 {
		m.speed = factor
	}
}

// SetHold makes clips play until Finish is called.
func (m *MockPlayer) SetHold(hold bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hold = hold
}

// SetError makes Play fail with err. Nil clears it.
func (m *MockPlayer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Play records pcm and blocks like Player.Play.
func (m *MockPlayer) Play(ctx context.Context, pcm []byte) error {
	m.mu.Lock()
	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return err
	}
	if m.stop != nil {
		close(m.stop)
	}
	stop := make(chan struct{})
	finish := make(chan struct{})
	m.stop, m.finish, m.wake = stop, finish, make(chan struct{})
	m.state = StatePlaying
	m.played = append(m.played, append([]byte(nil), pcm...))
	remaining := time.Duration(float64(Duration(pcm, m.sampleRate, 1)) / m.speed)
	hold := m.hold
	m.mu.Unlock()

	defer m.done(stop)

	for {
		m.mu.Lock()
		wake := m.wake
		paused := m.state == StatePaused
		m.mu.Unlock()

		var timer *time.Timer
		var elapsed <-chan time.Time
		started := time.Now()
		if !hold && !paused {
			timer = time.NewTimer(remaining)
			elapsed = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return ctx.Err()
		case <-stop:
			stopTimer(timer)
			return ErrStopped
		case <-finish:
			stopTimer(timer)
			return nil
		case <-elapsed:
			return nil
		case <-wake:
			if timer != nil {
				timer.Stop()
				remaining -= time.Since(started)
			}
		}
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

func (m *MockPlayer) done(stop chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop == stop {
		m.stop, m.finish, m.wake = nil, nil, nil
		m.state = StateStopped
	}
}

// Pause halts the clip in progress.
func (m *MockPlayer) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePlaying {
		return
	}
	m.pauseCount++
	m.state = StatePaused
	m.signal()
}

// Resume continues a paused clip.
func (m *MockPlayer) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePaused {
		return
	}
	m.resumeCount++
	m.state = StatePlaying
	m.signal()
}

// signal wakes Play so that it notices a pause or resume.
func (m *MockPlayer) signal() {
	if m.wake != nil {
		close(m.wake)
	}
	m.wake = make(chan struct{})
}

// Stop ends the clip in progress.
func (m *MockPlayer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop == nil {
		return
	}
	m.stopCount++
	close(m.stop)
	m.stop, m.finish, m.wake = nil, nil, nil
	m.state = StateStopped
}

// Finish completes a held clip. It reports whether one was playing.
func (m *MockPlayer) Finish() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finish == nil {
		return false
	}
	close(m.finish)
	m.finish = nil
	return true
}

// State returns the current state.
func (m *MockPlayer) State() PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Played returns every clip passed to Play.
func (m *MockPlayer) Played() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.played...)
}

// Counts returns how often Pause, Resume and Stop took effect.
func (m *MockPlayer) Counts() (pauses, resumes, stops int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCount, m.resumeCount, m.stopCount
}
