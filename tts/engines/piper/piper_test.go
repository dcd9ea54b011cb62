package piper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/narrate/tts"
)

// TestVoiceFromModel tests naming voices after model files.
func TestVoiceFromModel(t *testing.T) {
	tests := []struct {
		path string
		want tts.Voice
	}{
		{"/m/zh_CN-huayan-medium.onnx", tts.Voice{ID: "zh_CN-huayan-medium", Name: "huayan (medium)", Lang: "zh-CN"}},
		{"/m/en_US-lessac.onnx", tts.Voice{ID: "en_US-lessac", Name: "lessac", Lang: "en-US"}},
		{"custom.onnx", tts.Voice{ID: "custom", Name: "custom", Lang: "und"}},
	}
	for _, tt := range tests {
		if got := voiceFromModel(tt.path); got != tt.want {
			t.Errorf("voiceFromModel(%q) = %+v, want %+v", tt.path, got, tt.want)
		}
	}
}

// TestArgs tests the command line.
func TestArgs(t *testing.T) {
	got := strings.Join(args("/m/a.onnx", 2), " ")
	want := "--model /m/a.onnx --output-raw --length_scale 0.500"
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
	if got := args("m", 0); got[len(got)-1] != "1.000" {
		t.Errorf("zero rate should use length scale 1, got %v", got)
	}
}

// TestDiscoverModels tests model discovery.
func TestDiscoverModels(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zh_CN-b-medium.onnx", "en_US-a-low.onnx", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	explicit := filepath.Join(dir, "zh_CN-b-medium.onnx")

	models, err := discoverModels(explicit, dir)
	if err != nil {
		t.Fatalf("discoverModels: %v", err)
	}
	want := []string{explicit, filepath.Join(dir, "en_US-a-low.onnx")}
	if len(models) != len(want) {
		t.Fatalf("models = %v, want %v", models, want)
	}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("model %d = %s, want %s", i, models[i], want[i])
		}
	}

	if _, err := discoverModels("", t.TempDir()); !errors.Is(err, ErrNoModels) {
		t.Errorf("empty dir error = %v", err)
	}
	if _, err := discoverModels(filepath.Join(dir, "missing.onnx"), ""); !errors.Is(err, ErrNoModels) {
		t.Errorf("missing model error = %v", err)
	}
}

// fakePiper writes a shell script standing in for piper.
func fakePiper(t *testing.T, script string) (binary, model string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported")
	}
	dir := t.TempDir()
	binary = filepath.Join(dir, "piper")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	model = filepath.Join(dir, "zh_CN-test-low.onnx")
	if err := os.WriteFile(model, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return binary, model
}

// TestSynthesize tests a run against a stand-in binary.
func TestSynthesize(t *testing.T) {
	binary, model := fakePiper(t, "cat >/dev/null\nprintf 'pcm!'\n")
	cfg := tts.DefaultPiperConfig()
	cfg.Binary = binary
	cfg.Model = model

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	voices := s.Voices()
	if len(voices) != 1 || voices[0].Lang != "zh-CN" || !voices[0].Default {
		t.Fatalf("voices = %+v", voices)
	}

	pcm, err := s.Synthesize(context.Background(), "你好", voices[0], 1)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(pcm) != "pcm!" {
		t.Errorf("pcm = %q", pcm)
	}
	if s.Name() != "piper" || s.SampleRate() != 22050 {
		t.Errorf("name, rate = %s, %d", s.Name(), s.SampleRate())
	}
}

// TestSynthesizeFailure tests error reporting.
func TestSynthesizeFailure(t *testing.T) {
	binary, model := fakePiper(t, "echo 'bad model' >&2\nexit 1\n")
	cfg := tts.DefaultPiperConfig()
	cfg.Binary = binary
	cfg.Model = model

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = s.Synthesize(context.Background(), "text", tts.Voice{ID: "unknown"}, 1)
	if err == nil || !strings.Contains(err.Error(), "bad model") {
		t.Errorf("error = %v, want stderr in message", err)
	}
}

// TestSynthesizeCancel tests that cancelling stops the process.
func TestSynthesizeCancel(t *testing.T) {
	binary, model := fakePiper(t, "exec sleep 10\n")
	cfg := tts.DefaultPiperConfig()
	cfg.Binary = binary
	cfg.Model = model

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := s.Synthesize(ctx, "text", tts.Voice{}, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("cancel should stop the process")
	}
}

// TestNewMissingBinary tests that a missing binary is reported.
func TestNewMissingBinary(t *testing.T) {
	cfg := tts.DefaultPiperConfig()
	cfg.Binary = filepath.Join(t.TempDir(), "no-such-piper")
	cfg.Model = "model.onnx"
	if _, err := New(cfg); !errors.Is(err, tts.ErrEngineNotAvailable) {
		t.Errorf("error = %v, want ErrEngineNotAvailable", err)
	}
}
