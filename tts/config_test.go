package tts

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// TestDefaultConfig tests that default configuration is valid.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	if cfg.Engine != "mock" {
		t.Errorf("Default engine should be mock, got %s", cfg.Engine)
	}
	if cfg.Rate != 0.8 || cfg.Lang != "zh-CN" {
		t.Errorf("Default rate and lang = %v, %q", cfg.Rate, cfg.Lang)
	}
}

// TestConfigValidation tests configuration validation.
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"engine case folded", func(c *Config) { c.Engine = "MOCK" }, false},
		{"invalid engine", func(c *Config) { c.Engine = "invalid" }, true},
		{"rate too low", func(c *Config) { c.Rate = 0.01 }, true},
		{"rate too high", func(c *Config) { c.Rate = 11 }, true},
		{"pitch too high", func(c *Config) { c.Pitch = 3 }, true},
		{"emphasis below one", func(c *Config) { c.EmphasisRateFactor = 0.5 }, true},
		{"negative pause", func(c *Config) { c.CodePause = -time.Second }, true},
		{"zero threshold", func(c *Config) { c.SentenceThreshold = 0 }, true},
		{"unknown phrases", func(c *Config) { c.Phrases = "fr" }, true},
		{"volume too high", func(c *Config) { c.Volume = 3.0 }, true},
		{"wpm too low", func(c *Config) { c.Mock.WordsPerMinute = 10 }, true},
		{"compression too high", func(c *Config) { c.Cache.CompressionLevel = 30 }, true},
		{"piper without model", func(c *Config) { c.Engine = "piper" }, true},
		{"piper with model", func(c *Config) {
			c.Engine = "piper"
			c.Piper.Model = "/models/zh.onnx"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v should wrap ErrInvalidConfig", err)
			}
		})
	}
}

// TestPiperConfigValidation tests Piper configuration validation.
func TestPiperConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*PiperConfig)
		wantErr bool
	}{
		{"model dir only", func(c *PiperConfig) { c.ModelDir = "/models" }, false},
		{"empty binary", func(c *PiperConfig) { c.Model = "m"; c.Binary = "" }, true},
		{"bad sample rate", func(c *PiperConfig) { c.Model = "m"; c.SampleRate = 0 }, true},
		{"short timeout", func(c *PiperConfig) { c.Model = "m"; c.Timeout = time.Millisecond }, true},
		{"zero rps", func(c *PiperConfig) { c.Model = "m"; c.RequestsPerSecond = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPiperConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestControllerConfig tests the conversion to controller settings.
func TestControllerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rate = 1.5
	cfg.CodePause = time.Second
	cfg.Lang = "en-US"

	cc := cfg.ControllerConfig()
	if cc.DefaultRate != 1.5 || cc.CodePause != time.Second || cc.Lang != "en-US" {
		t.Errorf("ControllerConfig() = %+v", cc)
	}
	if len(cc.VoicePreference.Languages) == 0 {
		t.Error("voice preference should be kept")
	}
}

// TestLoadConfig tests loading from Viper.
func TestLoadConfig(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("narration.rate", 1.25)
	v.Set("narration.phrases", "en")
	v.Set("narration.code_pause", "750ms")
	v.Set("narration.cache.dir", "/tmp/narrate")
	v.Set("narration.mock.words_per_minute", 240)

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Rate != 1.25 || cfg.Phrases != "en" {
		t.Errorf("rate, phrases = %v, %q", cfg.Rate, cfg.Phrases)
	}
	if cfg.CodePause != 750*time.Millisecond {
		t.Errorf("code pause = %v", cfg.CodePause)
	}
	if cfg.Cache.Dir != "/tmp/narrate" || cfg.Mock.WordsPerMinute != 240 {
		t.Errorf("cache dir, wpm = %q, %d", cfg.Cache.Dir, cfg.Mock.WordsPerMinute)
	}
	if cfg.NormalPause != 200*time.Millisecond {
		t.Errorf("normal pause default = %v", cfg.NormalPause)
	}
}

// TestLoadConfigInvalid tests that invalid values are rejected.
func TestLoadConfigInvalid(t *testing.T) {
	v := viper.New()
	v.Set("narration.engine", "espeak")
	if _, err := LoadConfig(v); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadConfig error = %v, want ErrInvalidConfig", err)
	}
}
