package tts

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads narration configuration from the narration.*
// keys known to Viper, over the defaults.
func LoadConfigFromViper() (Config, error) {
	return LoadConfig(viper.GetViper())
}

// LoadConfig loads narration configuration from v.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	if v.IsSet("narration.engine") {
		cfg.Engine = v.GetString("narration.engine")
	}
	if v.IsSet("narration.lang") {
		cfg.Lang = v.GetString("narration.lang")
	}
	if v.IsSet("narration.voice") {
		cfg.Voice = v.GetString("narration.voice")
	}
	if v.IsSet("narration.rate") {
		cfg.Rate = v.GetFloat64("narration.rate")
	}
	if v.IsSet("narration.pitch") {
		cfg.Pitch = v.GetFloat64("narration.pitch")
	}
	if v.IsSet("narration.emphasis_rate_factor") {
		cfg.EmphasisRateFactor = v.GetFloat64("narration.emphasis_rate_factor")
	}
	if v.IsSet("narration.normal_pause") {
		cfg.NormalPause = v.GetDuration("narration.normal_pause")
	}
	if v.IsSet("narration.code_pause") {
		cfg.CodePause = v.GetDuration("narration.code_pause")
	}
	if v.IsSet("narration.error_delay") {
		cfg.ErrorDelay = v.GetDuration("narration.error_delay")
	}
	if v.IsSet("narration.sentence_threshold") {
		cfg.SentenceThreshold = v.GetInt("narration.sentence_threshold")
	}
	if v.IsSet("narration.phrases") {
		cfg.Phrases = v.GetString("narration.phrases")
	}
	if v.IsSet("narration.volume") {
		cfg.Volume = v.GetFloat64("narration.volume")
	}

	cfg.Piper = loadPiperConfig(v)
	cfg.Mock = loadMockConfig(v)
	cfg.Cache = loadCacheConfig(v)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid narration configuration: %w", err)
	}
	return cfg, nil
}

func loadPiperConfig(v *viper.Viper) PiperConfig {
	cfg := DefaultPiperConfig()
	if v.IsSet("narration.piper.binary") {
		cfg.Binary = v.GetString("narration.piper.binary")
	}
	if v.IsSet("narration.piper.model") {
		cfg.Model = v.GetString("narration.piper.model")
	}
	if v.IsSet("narration.piper.model_dir") {
		cfg.ModelDir = v.GetString("narration.piper.model_dir")
	}
	if v.IsSet("narration.piper.sample_rate") {
		cfg.SampleRate = v.GetInt("narration.piper.sample_rate")
	}
	if v.IsSet("narration.piper.timeout") {
		cfg.Timeout = v.GetDuration("narration.piper.timeout")
	}
	if v.IsSet("narration.piper.requests_per_second") {
		cfg.RequestsPerSecond = v.GetFloat64("narration.piper.requests_per_second")
	}
	return cfg
}

func loadMockConfig(v *viper.Viper) MockConfig {
	cfg := DefaultMockConfig()
	if v.IsSet("narration.mock.words_per_minute") {
		cfg.WordsPerMinute = v.GetInt("narration.mock.words_per_minute")
	}
	return cfg
}

func loadCacheConfig(v *viper.Viper) CacheConfig {
	cfg := DefaultCacheConfig()
	if v.IsSet("narration.cache.dir") {
		cfg.Dir = v.GetString("narration.cache.dir")
	}
	if v.IsSet("narration.cache.memory_ttl") {
		cfg.MemoryTTL = v.GetDuration("narration.cache.memory_ttl")
	}
	if v.IsSet("narration.cache.max_disk_mb") {
		cfg.MaxDiskMB = v.GetInt("narration.cache.max_disk_mb")
	}
	if v.IsSet("narration.cache.compression_level") {
		cfg.CompressionLevel = v.GetInt("narration.cache.compression_level")
	}
	return cfg
}

// SetDefaults registers the narration defaults with Viper.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("narration.engine", d.Engine)
	v.SetDefault("narration.lang", d.Lang)
	v.SetDefault("narration.rate", d.Rate)
	v.SetDefault("narration.pitch", d.Pitch)
	v.SetDefault("narration.emphasis_rate_factor", d.EmphasisRateFactor)
	v.SetDefault("narration.normal_pause", d.NormalPause)
	v.SetDefault("narration.code_pause", d.CodePause)
	v.SetDefault("narration.error_delay", d.ErrorDelay)
	v.SetDefault("narration.sentence_threshold", d.SentenceThreshold)
	v.SetDefault("narration.phrases", d.Phrases)
	v.SetDefault("narration.volume", d.Volume)
	v.SetDefault("narration.piper.binary", d.Piper.Binary)
	v.SetDefault("narration.piper.sample_rate", d.Piper.SampleRate)
	v.SetDefault("narration.piper.timeout", d.Piper.Timeout)
	v.SetDefault("narration.piper.requests_per_second", d.Piper.RequestsPerSecond)
	v.SetDefault("narration.mock.words_per_minute", d.Mock.WordsPerMinute)
	v.SetDefault("narration.cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("narration.cache.max_disk_mb", d.Cache.MaxDiskMB)
	v.SetDefault("narration.cache.compression_level", d.Cache.CompressionLevel)
}
