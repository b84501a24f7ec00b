package tts

import (
	"fmt"
	"time"

	homedir "github.com/mitchellh/go-homedir"
)

// Config holds the full gateway configuration.
type Config struct {
	// DefaultVoice is used when a request names no voice at all.
	DefaultVoice string `yaml:"default_voice"`

	// Timeout bounds a whole synthesis request. Zero disables.
	Timeout time.Duration `yaml:"timeout"`

	// AliasFile points to a YAML file of extra language aliases,
	// merged over the built-in table at highest priority.
	AliasFile string `yaml:"alias_file"`

	// Synthesis parameter defaults, overridable per request.
	Quality          string  `yaml:"quality"`
	DenoiserStrength float64 `yaml:"denoiser_strength"`
	NoiseScale       float64 `yaml:"noise_scale"`
	LengthScale      float64 `yaml:"length_scale"`

	Cache CacheConfig `yaml:"cache"`

	// Engine-specific configurations
	Espeak    EspeakConfig    `yaml:"espeak"`
	Flite     FliteConfig     `yaml:"flite"`
	Festival  FestivalConfig  `yaml:"festival"`
	NanoTTS   NanoTTSConfig   `yaml:"nanotts"`
	MaryTTS   MaryTTSConfig   `yaml:"marytts"`
	GlowSpeak GlowSpeakConfig `yaml:"glow_speak"`
	Remote    RemoteConfig    `yaml:"remote"`
}

// CacheConfig controls the synthesized-audio result cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" env:"VOXGATE_CACHE_ENABLED"`
	Dir     string `yaml:"dir" env:"VOXGATE_CACHE_DIR"`
	MaxSize int64  `yaml:"max_size" env:"VOXGATE_CACHE_MAX_SIZE"`
	// CompressionLevel is the zstd level; 0 disables compression.
	CompressionLevel int `yaml:"compression_level" env:"VOXGATE_CACHE_COMPRESSION_LEVEL"`
}

// EspeakConfig controls the eSpeak subprocess engine. Binary overrides
// the espeak-ng/espeak PATH probe. Required turns a failed probe into a
// startup error instead of a skipped engine.
type EspeakConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Required bool          `yaml:"required"`
	Binary   string        `yaml:"binary"`
	Timeout  time.Duration `yaml:"timeout"`
}

// FliteConfig controls the flite subprocess engine.
type FliteConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Required bool          `yaml:"required"`
	VoiceDir string        `yaml:"voice_dir"`
	Timeout  time.Duration `yaml:"timeout"`
}

// FestivalConfig controls the festival subprocess engine.
type FestivalConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Required bool          `yaml:"required"`
	Timeout  time.Duration `yaml:"timeout"`
}

// NanoTTSConfig controls the nanotts subprocess engine.
type NanoTTSConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Required bool          `yaml:"required"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MaryTTSConfig controls the resident MaryTTS engine. Dir must point at
// an installation with voice jars; an empty dir disables the engine.
type MaryTTSConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Required bool          `yaml:"required"`
	Dir      string        `yaml:"dir"`
	Timeout  time.Duration `yaml:"timeout"`
}

// GlowSpeakConfig controls the in-process neural engine. ModelsDir must
// hold voice and vocoder model directories; empty disables the engine.
type GlowSpeakConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Required  bool   `yaml:"required"`
	ModelsDir string `yaml:"models_dir"`
}

// RemoteConfig forwards a named engine to another speech server.
type RemoteConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Required          bool          `yaml:"required"`
	Name              string        `yaml:"name"`
	URL               string        `yaml:"url"`
	TLSVerify         bool          `yaml:"tls_verify"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// DefaultConfig returns the configuration used when nothing is set.
// Subprocess engines default to enabled; they drop out at registry
// build time when their binaries are missing.
func DefaultConfig() Config {
	return Config{
		DefaultVoice: "en",

		Quality:          "high",
		DenoiserStrength: 0.005,
		NoiseScale:       0.667,
		LengthScale:      1.0,

		Cache: CacheConfig{
			Enabled:          true,
			MaxSize:          256 * 1024 * 1024,
			CompressionLevel: 3,
		},

		Espeak:   EspeakConfig{Enabled: true, Timeout: 30 * time.Second},
		Flite:    FliteConfig{Enabled: true, VoiceDir: "/usr/share/flite", Timeout: 30 * time.Second},
		Festival: FestivalConfig{Enabled: true, Timeout: 30 * time.Second},
		NanoTTS:  NanoTTSConfig{Enabled: true, Timeout: 30 * time.Second},
		MaryTTS:  MaryTTSConfig{Enabled: true, Timeout: 60 * time.Second},
		GlowSpeak: GlowSpeakConfig{
			Enabled: true,
		},
		Remote: RemoteConfig{
			Name:      "larynx",
			TLSVerify: true,
			Timeout:   60 * time.Second,
		},
	}
}

// Validate checks value ranges that would otherwise fail deep inside a
// synthesis request.
func (c Config) Validate() error {
	switch c.Quality {
	case "", "high", "medium", "low":
	default:
		return fmt.Errorf("%w: quality %q", ErrInvalidConfig, c.Quality)
	}
	if c.LengthScale < 0 {
		return fmt.Errorf("%w: negative length_scale", ErrInvalidConfig)
	}
	if c.Cache.MaxSize < 0 {
		return fmt.Errorf("%w: negative cache max_size", ErrInvalidConfig)
	}
	if c.Remote.Enabled && c.Remote.URL == "" {
		return fmt.Errorf("%w: remote engine enabled without url", ErrInvalidConfig)
	}
	for _, e := range []struct {
		name              string
		enabled, required bool
	}{
		{"espeak", c.Espeak.Enabled, c.Espeak.Required},
		{"flite", c.Flite.Enabled, c.Flite.Required},
		{"festival", c.Festival.Enabled, c.Festival.Required},
		{"nanotts", c.NanoTTS.Enabled, c.NanoTTS.Required},
		{"marytts", c.MaryTTS.Enabled, c.MaryTTS.Required},
		{"glow_speak", c.GlowSpeak.Enabled, c.GlowSpeak.Required},
		{"remote", c.Remote.Enabled, c.Remote.Required},
	} {
		if e.required && !e.enabled {
			return fmt.Errorf("%w: engine %s required but disabled", ErrInvalidConfig, e.name)
		}
	}
	return nil
}

// DefaultOptionsFromConfig builds the request option defaults from the
// configured synthesis parameters.
func (c Config) DefaultOptionsFromConfig() SynthesisOptions {
	opts := DefaultOptions()
	if c.Quality != "" {
		opts.Quality = c.Quality
	}
	if c.DenoiserStrength > 0 {
		opts.DenoiserStrength = c.DenoiserStrength
	}
	if c.NoiseScale > 0 {
		opts.NoiseScale = c.NoiseScale
	}
	if c.LengthScale > 0 {
		opts.LengthScale = c.LengthScale
	}
	return opts
}

// expandPath resolves a leading ~ in configured directories.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}
