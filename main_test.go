package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/narrate/tts"
)

// TestPrintSegments tests the plain-text queue listing.
func TestPrintSegments(t *testing.T) {
	cfg := tts.DefaultConfig()
	cfg.Phrases = "en"

	var buf bytes.Buffer
	if err := printSegments(&buf, []byte("# Title\n\nHello world.\n\n`code`"), cfg, 80); err != nil {
		t.Fatalf("printSegments: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"heading", "Heading: Title", "Hello world.", "inline-code"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}

	if err := printSegments(io.Discard, []byte("   "), cfg, 80); !errors.Is(err, tts.ErrNoContent) {
		t.Errorf("empty document error = %v", err)
	}
}

// TestWriteDefaults tests the YAML rendering of the default settings.
func TestWriteDefaults(t *testing.T) {
	var buf bytes.Buffer
	if err := writeDefaults(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"narration:", "engine: mock", "normal_pause: 200ms", "words_per_minute: 180"} {
		if !strings.Contains(out, want) {
			t.Errorf("defaults should contain %q:\n%s", want, out)
		}
	}
}

// TestSourceFromArg tests file and directory sources.
func TestSourceFromArg(t *testing.T) {
	dir := t.TempDir()
	readme := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readme, []byte("# Hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, arg := range []string{dir, readme} {
		src, err := sourceFromArg(arg)
		if err != nil {
			t.Fatalf("sourceFromArg(%q): %v", arg, err)
		}
		_ = src.reader.Close()
		if src.path != readme {
			t.Errorf("sourceFromArg(%q) path = %q, want %q", arg, src.path, readme)
		}
	}

	if _, err := sourceFromArg(t.TempDir()); err == nil {
		t.Error("a directory without a README should fail")
	}
	if _, err := sourceFromArg(filepath.Join(dir, "missing.md")); err == nil {
		t.Error("a missing file should fail")
	}
}

// TestControllerConfig tests that the terminator follows the phrase set.
func TestControllerConfig(t *testing.T) {
	cfg := tts.DefaultConfig()
	if got := controllerConfig(cfg).Terminator; got != "。" {
		t.Errorf("zh terminator = %q", got)
	}
	cfg.Phrases = "en"
	if got := controllerConfig(cfg).Terminator; got != "." {
		t.Errorf("en terminator = %q", got)
	}
}

// TestCacheDir tests the configured and default cache locations.
func TestCacheDir(t *testing.T) {
	dir, err := cacheDir(tts.CacheConfig{Dir: "/tmp/narrate-cache"})
	if err != nil || dir != "/tmp/narrate-cache" {
		t.Errorf("cacheDir = %q, %v", dir, err)
	}
	dir, err = cacheDir(tts.CacheConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dir) != "audio" {
		t.Errorf("default cache dir = %q", dir)
	}
}
