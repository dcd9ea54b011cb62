package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/narrate/internal/audio"
	"github.com/dgnsrekt/narrate/internal/cache"
	"github.com/dgnsrekt/narrate/tts"
	"github.com/dgnsrekt/narrate/tts/engines"
	"github.com/dgnsrekt/narrate/tts/engines/mock"
	"github.com/dgnsrekt/narrate/tts/engines/piper"
	"github.com/dgnsrekt/narrate/tts/segment"
	"github.com/dgnsrekt/narrate/tts/speech"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
)

// maxEngineFailures is how many piper failures in a row switch narration to
// silence.
const maxEngineFailures = 3

// narratorStack is the narration service with whatever it owns.
type narratorStack struct {
	narrator tts.Narrator
	cache    *cache.Cache
	closers  []func() error
}

// Close releases the stack in reverse order of construction.
func (s *narratorStack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn("close narrator", "error", err)
		}
	}
}

// newNarrator builds the narration service selected by cfg.Engine.
func newNarrator(cfg tts.Config) (*narratorStack, error) {
	if cfg.Engine != "piper" {
		log.Debug("using mock narrator", "wpm", cfg.Mock.WordsPerMinute)
		return &narratorStack{narrator: mock.NewAuto(cfg.Mock.WordsPerMinute)}, nil
	}

	synth, err := piper.New(cfg.Piper)
	if err != nil {
		return nil, fmt.Errorf("unable to start piper: %w", err)
	}
	fallback := engines.NewFallback(synth, engines.NewSilence(synth.SampleRate(), cfg.Mock.WordsPerMinute), maxEngineFailures)

	c, err := openCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	stack := &narratorStack{cache: c}
	stack.closers = append(stack.closers, c.Close)

	player, err := audio.NewPlayer(audio.Config{
		SampleRate: synth.SampleRate(),
		Channels:   1,
		BufferSize: 100 * time.Millisecond,
		Volume:     cfg.Volume,
	})
	if err != nil {
		stack.Close()
		return nil, fmt.Errorf("unable to open audio device: %w", err)
	}

	svc := speech.New(fallback, player, speech.Options{
		Cache:             c,
		RequestsPerSecond: cfg.Piper.RequestsPerSecond,
	})
	stack.narrator = svc
	stack.closers = append(stack.closers, func() error {
		svc.Close()
		return nil
	})
	log.Debug("using piper narrator", "voices", len(synth.Voices()), "cache", c.Dir())
	return stack, nil
}

// openCache opens the audio cache. Without a configured directory it lives in
// the user cache directory.
func openCache(cfg tts.CacheConfig) (*cache.Cache, error) {
	dir, err := cacheDir(cfg)
	if err != nil {
		return nil, err
	}
	c, err := cache.New(cache.Config{
		Dir:              dir,
		MemoryTTL:        cfg.MemoryTTL,
		MaxDiskBytes:     int64(cfg.MaxDiskMB) << 20,
		CompressionLevel: cfg.CompressionLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open audio cache: %w", err)
	}
	return c, nil
}

func cacheDir(cfg tts.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return homedir.Expand(cfg.Dir)
	}
	dir, err := gap.NewScope(gap.User, "narrate").CacheDir()
	if err != nil {
		return "", fmt.Errorf("unable to find cache directory: %w", err)
	}
	return filepath.Join(dir, "audio"), nil
}

func newSegmenter(cfg tts.Config) *segment.Segmenter {
	return segment.New(segment.Options{
		Phrases:   segment.PhrasesFor(cfg.Phrases),
		Threshold: cfg.SentenceThreshold,
	})
}

// controllerConfig returns the controller settings of cfg, with the
// terminator of its phrase set.
func controllerConfig(cfg tts.Config) tts.ControllerConfig {
	cc := cfg.ControllerConfig()
	cc.Terminator = segment.PhrasesFor(cfg.Phrases).Terminator
	return cc
}
