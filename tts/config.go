package tts

import (
	"fmt"
	"strings"
	"time"
)

// Config contains all narration configuration options.
type Config struct {
	Engine string `yaml:"engine" env:"NARRATE_ENGINE" envDefault:"mock"`

	// Session defaults
	Lang               string  `yaml:"lang" env:"NARRATE_LANG" envDefault:"zh-CN"`
	Voice              string  `yaml:"voice" env:"NARRATE_VOICE"`
	Rate               float64 `yaml:"rate" env:"NARRATE_RATE" envDefault:"0.8"`
	Pitch              float64 `yaml:"pitch" env:"NARRATE_PITCH" envDefault:"1.0"`
	EmphasisRateFactor float64 `yaml:"emphasis_rate_factor" env:"NARRATE_EMPHASIS_RATE_FACTOR" envDefault:"1.2"`

	// Inter-unit delays
	NormalPause time.Duration `yaml:"normal_pause" env:"NARRATE_NORMAL_PAUSE" envDefault:"200ms"`
	CodePause   time.Duration `yaml:"code_pause" env:"NARRATE_CODE_PAUSE" envDefault:"500ms"`
	ErrorDelay  time.Duration `yaml:"error_delay" env:"NARRATE_ERROR_DELAY" envDefault:"300ms"`

	// Segmentation
	SentenceThreshold int    `yaml:"sentence_threshold" env:"NARRATE_SENTENCE_THRESHOLD" envDefault:"50"`
	Phrases           string `yaml:"phrases" env:"NARRATE_PHRASES" envDefault:"zh"`

	// Audio
	Volume float64 `yaml:"volume" env:"NARRATE_VOLUME" envDefault:"1.0"`

	Piper PiperConfig `yaml:"piper"`
	Mock  MockConfig  `yaml:"mock"`
	Cache CacheConfig `yaml:"cache"`
}

// PiperConfig contains Piper engine specific settings.
type PiperConfig struct {
	Binary            string        `yaml:"binary" env:"NARRATE_PIPER_BINARY" envDefault:"piper"`
	Model             string        `yaml:"model" env:"NARRATE_PIPER_MODEL"`
	ModelDir          string        `yaml:"model_dir" env:"NARRATE_PIPER_MODEL_DIR"`
	SampleRate        int           `yaml:"sample_rate" env:"NARRATE_PIPER_SAMPLE_RATE" envDefault:"22050"`
	Timeout           time.Duration `yaml:"timeout" env:"NARRATE_PIPER_TIMEOUT" envDefault:"30s"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"NARRATE_PIPER_RPS" envDefault:"4"`
}

// MockConfig contains settings for the mock engine.
type MockConfig struct {
	WordsPerMinute int `yaml:"words_per_minute" env:"NARRATE_MOCK_WPM" envDefault:"180"`
}

// CacheConfig contains settings for the synthesized audio cache.
type CacheConfig struct {
	Dir              string        `yaml:"dir" env:"NARRATE_CACHE_DIR"`
	MemoryTTL        time.Duration `yaml:"memory_ttl" env:"NARRATE_CACHE_MEMORY_TTL" envDefault:"10m"`
	MaxDiskMB        int           `yaml:"max_disk_mb" env:"NARRATE_CACHE_MAX_DISK_MB" envDefault:"100"`
	CompressionLevel int           `yaml:"compression_level" env:"NARRATE_CACHE_COMPRESSION" envDefault:"3"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine:             "mock",
		Lang:               "zh-CN",
		Rate:               0.8,
		Pitch:              1.0,
		EmphasisRateFactor: 1.2,
		NormalPause:        200 * time.Millisecond,
		CodePause:          500 * time.Millisecond,
		ErrorDelay:         300 * time.Millisecond,
		SentenceThreshold:  50,
		Phrases:            "zh",
		Volume:             1.0,
		Piper:              DefaultPiperConfig(),
		Mock:               DefaultMockConfig(),
		Cache:              DefaultCacheConfig(),
	}
}

// DefaultPiperConfig returns default Piper configuration.
func DefaultPiperConfig() PiperConfig {
	return PiperConfig{
		Binary:            "piper",
		SampleRate:        22050,
		Timeout:           30 * time.Second,
		RequestsPerSecond: 4,
	}
}

// DefaultMockConfig returns default mock engine configuration.
func DefaultMockConfig() MockConfig {
	return MockConfig{WordsPerMinute: 180}
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MemoryTTL:        10 * time.Minute,
		MaxDiskMB:        100,
		CompressionLevel: 3,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validEngines := []string{"mock", "piper"}
	engineValid := false
	for _, e := range validEngines {
		if strings.EqualFold(c.Engine, e) {
			engineValid = true
			c.Engine = strings.ToLower(c.Engine)
			break
		}
	}
	if !engineValid {
		return fmt.Errorf("%w: engine %q must be one of %v", ErrInvalidConfig, c.Engine, validEngines)
	}

	if c.Rate < 0.1 || c.Rate > 10 {
		return fmt.Errorf("%w: rate must be between 0.1 and 10, got %g", ErrInvalidConfig, c.Rate)
	}
	if c.Pitch < 0 || c.Pitch > 2 {
		return fmt.Errorf("%w: pitch must be between 0 and 2, got %g", ErrInvalidConfig, c.Pitch)
	}
	if c.EmphasisRateFactor < 1 {
		return fmt.Errorf("%w: emphasis_rate_factor must be at least 1, got %g", ErrInvalidConfig, c.EmphasisRateFactor)
	}
	if c.NormalPause < 0 || c.CodePause < 0 || c.ErrorDelay < 0 {
		return fmt.Errorf("%w: pauses cannot be negative", ErrInvalidConfig)
	}
	if c.SentenceThreshold < 1 {
		return fmt.Errorf("%w: sentence_threshold must be positive, got %d", ErrInvalidConfig, c.SentenceThreshold)
	}
	if c.Phrases != "zh" && c.Phrases != "en" {
		return fmt.Errorf("%w: phrases must be zh or en, got %q", ErrInvalidConfig, c.Phrases)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: volume must be between 0.0 and 1.0, got %g", ErrInvalidConfig, c.Volume)
	}

	if c.Engine == "piper" {
		if err := c.Piper.Validate(); err != nil {
			return fmt.Errorf("piper config: %w", err)
		}
	}
	if c.Mock.WordsPerMinute < 50 || c.Mock.WordsPerMinute > 500 {
		return fmt.Errorf("%w: words_per_minute must be between 50 and 500, got %d", ErrInvalidConfig, c.Mock.WordsPerMinute)
	}
	if c.Cache.MaxDiskMB < 0 {
		return fmt.Errorf("%w: cache max_disk_mb cannot be negative", ErrInvalidConfig)
	}
	if c.Cache.CompressionLevel < 0 || c.Cache.CompressionLevel > 22 {
		return fmt.Errorf("%w: cache compression_level must be between 0 and 22, got %d", ErrInvalidConfig, c.Cache.CompressionLevel)
	}
	return nil
}

// Validate checks if the Piper configuration is valid.
func (c *PiperConfig) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("%w: piper binary path cannot be empty", ErrInvalidConfig)
	}
	if c.Model == "" && c.ModelDir == "" {
		return fmt.Errorf("%w: piper needs a model or a model_dir", ErrInvalidConfig)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: invalid sample rate %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("%w: timeout must be at least 1 second, got %v", ErrInvalidConfig, c.Timeout)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: requests_per_second must be positive", ErrInvalidConfig)
	}
	return nil
}

// ControllerConfig returns the controller settings carried by c.
func (c Config) ControllerConfig() ControllerConfig {
	cc := DefaultControllerConfig()
	cc.Lang = c.Lang
	cc.DefaultRate = c.Rate
	cc.DefaultPitch = c.Pitch
	cc.EmphasisRateFactor = c.EmphasisRateFactor
	cc.NormalPause = c.NormalPause
	cc.CodePause = c.CodePause
	cc.ErrorDelay = c.ErrorDelay
	return cc
}
