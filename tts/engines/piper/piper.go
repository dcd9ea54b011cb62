// Package piper synthesizes speech with the piper command line program.
package piper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/narrate/tts"
	"github.com/mitchellh/go-homedir"
)

// ErrNoModels is returned when no voice model can be found.
var ErrNoModels = errors.New("no piper voice models found")

// Synthesizer runs a fresh piper process per request, writing the text to
// its stdin and reading raw PCM from its stdout.
type Synthesizer struct {
	cfg    tts.PiperConfig
	binary string
	voices []tts.Voice
	models map[string]string // voice id -> model path
}

// New creates a piper synthesizer from cfg. The binary must be on PATH or in
// one of the usual install locations.
func New(cfg tts.PiperConfig) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	binary := findBinary(cfg.Binary)
	if binary == "" {
		return nil, fmt.Errorf("%w: piper binary %q not found", tts.ErrEngineNotAvailable, cfg.Binary)
	}

	models, err := discoverModels(cfg.Model, cfg.ModelDir)
	if err != nil {
		return nil, err
	}

	s := &Synthesizer{cfg: cfg, binary: binary, models: make(map[string]string)}
	for i, path := range models {
		v := voiceFromModel(path)
		v.Default = i == 0
		s.voices = append(s.voices, v)
		s.models[v.ID] = path
	}
	log.Debug("piper ready", "binary", binary, "voices", len(s.voices))
	return s, nil
}

// Synthesize implements engines.Synthesizer.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice tts.Voice, rate float64) ([]byte, error) {
	model, ok := s.models[voice.ID]
	if !ok {
		model = s.models[s.voices[0].ID]
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.binary, args(model, rate)...)
	cmd.Stdin = strings.NewReader(text + "\n")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("piper: %w", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		return nil, fmt.Errorf("piper failed: %w: %s", err, msg)
	}
	if len(output) == 0 {
		return nil, errors.New("piper generated no audio")
	}
	log.Debug("piper generated audio", "bytes", len(output), "voice", voice.ID)
	return output, nil
}

// Voices implements engines.Synthesizer.
func (s *Synthesizer) Voices() []tts.Voice {
	out := make([]tts.Voice, len(s.voices))
	copy(out, s.voices)
	return out
}

// SampleRate implements engines.Synthesizer.
func (s *Synthesizer) SampleRate() int { return s.cfg.SampleRate }

// Name implements engines.Synthesizer.
func (s *Synthesizer) Name() string { return "piper" }

// args builds the piper command line. Piper's length scale is the inverse of
// the speaking rate.
func args(model string, rate float64) []string {
	if rate <= 0 {
		rate = 1
	}
	return []string{
		"--model", model,
		"--output-raw",
		"--length_scale", strconv.FormatFloat(1/rate, 'f', 3, 64),
	}
}

// discoverModels returns model, if set, followed by the *.onnx files in dir
// in name order.
func discoverModels(model, dir string) ([]string, error) {
	var models []string
	seen := make(map[string]bool)
	if model != "" {
		path, err := homedir.Expand(model)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoModels, err)
		}
		models = append(models, path)
		seen[path] = true
	}
	if dir != "" {
		path, err := homedir.Expand(dir)
		if err != nil {
			return nil, err
		}
		found, err := filepath.Glob(filepath.Join(path, "*.onnx"))
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, f := range found {
			if !seen[f] {
				models = append(models, f)
			}
		}
	}
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	return models, nil
}

// voiceFromModel describes a model from its file name, which piper voices
// spell as locale-name-quality, e.g. zh_CN-huayan-medium.onnx.
func voiceFromModel(path string) tts.Voice {
	id := strings.TrimSuffix(filepath.Base(path), ".onnx")
	v := tts.Voice{ID: id, Name: id, Lang: "und"}

	parts := strings.Split(id, "-")
	if len(parts) >= 2 && strings.Contains(parts[0], "_") {
		v.Lang = strings.ReplaceAll(parts[0], "_", "-")
		v.Name = parts[1]
		if len(parts) >= 3 {
			v.Name += " (" + strings.Join(parts[2:], "-") + ")"
		}
	}
	return v
}

// findBinary looks for the piper binary on PATH and in common locations.
func findBinary(name string) string {
	if name == "" {
		name = "piper"
	}
	if expanded, err := homedir.Expand(name); err == nil {
		name = expanded
	}
	locations := []string{name}
	if !strings.ContainsRune(name, filepath.Separator) {
		locations = append(locations, "/usr/local/bin/"+name, "/usr/bin/"+name)
		if home, err := homedir.Dir(); err == nil {
			locations = append(locations,
				filepath.Join(home, ".local", "bin", name),
				filepath.Join(home, "bin", name),
			)
		}
	}
	for _, loc := range locations {
		if path, err := exec.LookPath(loc); err == nil {
			return path
		}
	}
	return ""
}
