package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ErrStopped is returned by Play when Stop interrupts it.
var ErrStopped = errors.New("playback stopped")

// pollInterval is how often Play checks whether the device drained.
const pollInterval = 10 * time.Millisecond

// Config describes the PCM format and device buffering.
type Config struct {
	SampleRate int
	Channels   int
	BufferSize time.Duration
	// Volume is between 0 and 1.
	Volume float64
}

// DefaultConfig returns the format piper produces.
func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		Channels:   1,
		BufferSize: 100 * time.Millisecond,
		Volume:     1.0,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 96000 {
		return fmt.Errorf("sample rate must be between 8000 and 96000 Hz, got %d", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", c.Channels)
	}
	if c.BufferSize <= 0 {
		return errors.New("buffer size must be positive")
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %g", c.Volume)
	}
	return nil
}

// Player plays one PCM16 clip at a time. oto allows a single context per
// process, so a program should create one Player.
type Player struct {
	context *oto.Context
	cfg     Config

	mu      sync.Mutex
	current *oto.Player
	// data keeps the playing clip reachable until oto is done with it.
	data   []byte
	paused bool
}

// NewPlayer opens the audio device.
func NewPlayer(cfg Config) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   cfg.BufferSize,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready
	return &Player{context: ctx, cfg: cfg}, nil
}

// Play plays pcm and blocks until it finished, ctx is done or Stop is
// called. A new Play replaces the clip in progress.
func (p *Player) Play(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}
	data := make([]byte, len(pcm))
	copy(data, pcm)

	player := p.context.NewPlayer(bytes.NewReader(data))
	player.SetVolume(p.cfg.Volume)

	p.mu.Lock()
	p.closeCurrent()
	p.current = player
	p.data = data
	p.paused = false
	p.mu.Unlock()

	player.Play()
	defer p.release(player)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.mu.Lock()
			if p.current != player {
				p.mu.Unlock()
				return ErrStopped
			}
			done := !p.paused && !player.IsPlaying()
			p.mu.Unlock()
			if done {
				return player.Err()
			}
		}
	}
}

// Pause halts the clip in progress.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && !p.paused {
		p.current.Pause()
		p.paused = true
	}
}

// Resume continues a paused clip.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && p.paused {
		p.current.Play()
		p.paused = false
	}
}

// Stop ends the clip in progress. The blocked Play returns ErrStopped.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCurrent()
}

// SetVolume changes the volume of this and later clips.
func (p *Player) SetVolume(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %g", v)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Volume = v
	if p.current != nil {
		p.current.SetVolume(v)
	}
	return nil
}

func (p *Player) release(player *oto.Player) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == player {
		p.closeCurrent()
	}
}

func (p *Player) closeCurrent() {
	if p.current == nil {
		return
	}
	p.current.Pause()
	_ = p.current.Close()
	p.current = nil
	p.data = nil
	p.paused = false
}

// Duration returns the playing time of pcm in the player's format.
func (p *Player) Duration(pcm []byte) time.Duration {
	return Duration(pcm, p.cfg.SampleRate, p.cfg.Channels)
}

// Duration returns the playing time of PCM16 data.
func Duration(pcm []byte, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	frames := len(pcm) / (2 * channels)
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
