// Package speech narrates utterances by synthesizing, caching and playing
// their audio.
package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/narrate/internal/cache"
	"github.com/dgnsrekt/narrate/tts"
	"github.com/dgnsrekt/narrate/tts/engines"
	"golang.org/x/time/rate"
)

// Player plays PCM. Play blocks until the clip ends, ctx is done or Stop is
// called.
type Player interface {
	Play(ctx context.Context, pcm []byte) error
	Pause()
	Stop()
}

// Cache stores synthesized audio by key.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte)
}

// Options configures a Service.
type Options struct {
	// Cache is optional.
	Cache Cache
	// RequestsPerSecond limits synthesizer calls. Zero means 4.
	RequestsPerSecond float64
}

// Service implements tts.Narrator. Each utterance is split at sentence
// punctuation, and each piece is synthesized and played in turn, with a
// boundary event before it is heard. Pitch is not supported by the
// synthesizers and is ignored.
type Service struct {
	synth   engines.Synthesizer
	player  Player
	cache   Cache
	limiter *rate.Limiter

	mu      sync.Mutex
	handler func(tts.NarrationEvent)
	current uint64
	cancel  context.CancelFunc
	paused  bool
	wg      sync.WaitGroup
}

// New creates a speech service.
func New(synth engines.Synthesizer, player Player, opts Options) *Service {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}
	return &Service{
		synth:   synth,
		player:  player,
		cache:   opts.Cache,
		limiter: rate.NewLimiter(rate.Every(time.Duration(float64(time.Second)/rps)), 1),
	}
}

// SetEventHandler implements tts.Narrator.
func (s *Service) SetEventHandler(fn func(tts.NarrationEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = fn
}

// Speak implements tts.Narrator. It replaces any utterance in flight.
func (s *Service) Speak(u tts.Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return fmt.Errorf("%w: empty utterance", tts.ErrNarrationFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.current = u.ID
	s.paused = false

	s.wg.Add(1)
	go s.run(ctx, u)
	return nil
}

// Cancel implements tts.Narrator.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
}

// Pause implements tts.Narrator. A paused utterance stays silent until it
// is cancelled.
func (s *Service) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == 0 {
		return
	}
	s.paused = true
	s.player.Pause()
}

// Voices implements tts.Narrator.
func (s *Service) Voices() []tts.Voice {
	return s.synth.Voices()
}

// Close cancels the utterance in flight and waits for it to wind down.
func (s *Service) Close() {
	s.Cancel()
	s.wg.Wait()
}

// stop cancels before stopping the player so that run sees its context done
// when Play returns.
func (s *Service) stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.current = 0
	s.paused = false
	s.player.Stop()
}

func (s *Service) run(ctx context.Context, u tts.Utterance) {
	defer s.wg.Done()

	for _, c := range split(u.Text) {
		pcm, err := s.synthesize(ctx, c.text, u)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.emit(u.ID, tts.NarrationEvent{Kind: tts.EventError, Err: err})
			return
		}
		if s.isPaused(u.ID) {
			<-ctx.Done()
			return
		}

		s.emit(u.ID, tts.NarrationEvent{Kind: tts.EventBoundary, CharIndex: c.offset})
		if err := s.player.Play(ctx, pcm); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.emit(u.ID, tts.NarrationEvent{Kind: tts.EventError, Err: fmt.Errorf("playback: %w", err)})
			return
		}
	}
	s.emit(u.ID, tts.NarrationEvent{Kind: tts.EventEnd})
}

func (s *Service) synthesize(ctx context.Context, text string, u tts.Utterance) ([]byte, error) {
	key := cache.Key(text, u.Voice.ID, u.Rate)
	if s.cache != nil {
		if pcm, ok := s.cache.Get(key); ok {
			log.Debug("audio cache hit", "utterance", u.ID)
			return pcm, nil
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	pcm, err := s.synth.Synthesize(ctx, text, u.Voice, u.Rate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.synth.Name(), err)
	}
	if s.cache != nil {
		s.cache.Put(key, pcm)
	}
	return pcm, nil
}

func (s *Service) isPaused(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == id && s.paused
}

// emit delivers ev if id is still the utterance in flight. The handler runs
// without s.mu held.
func (s *Service) emit(id uint64, ev tts.NarrationEvent) {
	s.mu.Lock()
	if s.current != id {
		s.mu.Unlock()
		return
	}
	if ev.Kind != tts.EventBoundary {
		s.current = 0
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
	}
	h := s.handler
	s.mu.Unlock()

	ev.UtteranceID = id
	if h != nil {
		h(ev)
	}
}

// piece is one sentence of an utterance and its rune offset.
type piece struct {
	text   string
	offset int
}

// split cuts text after sentence punctuation, dropping blank pieces. An
// ASCII full stop only ends a sentence before whitespace or the end.
func split(text string) []piece {
	runes := []rune(text)
	var pieces []piece
	start := 0
	flush := func(end int) {
		if t := strings.TrimSpace(string(runes[start:end])); t != "" {
			pieces = append(pieces, piece{text: t, offset: start})
		}
		start = end
	}
	for i, r := range runes {
		switch {
		case strings.ContainsRune("。！？；!?;\n", r):
			flush(i + 1)
		case r == '.' && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])):
			flush(i + 1)
		}
	}
	flush(len(runes))
	return pieces
}
