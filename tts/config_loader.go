package tts

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads the gateway configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("tts.default_voice") {
		cfg.DefaultVoice = viper.GetString("tts.default_voice")
	}
	if viper.IsSet("tts.timeout") {
		if d, err := time.ParseDuration(viper.GetString("tts.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	if viper.IsSet("tts.alias_file") {
		cfg.AliasFile = expandPath(viper.GetString("tts.alias_file"))
	}

	// Synthesis defaults
	if viper.IsSet("tts.quality") {
		cfg.Quality = viper.GetString("tts.quality")
	}
	if viper.IsSet("tts.denoiser_strength") {
		cfg.DenoiserStrength = viper.GetFloat64("tts.denoiser_strength")
	}
	if viper.IsSet("tts.noise_scale") {
		cfg.NoiseScale = viper.GetFloat64("tts.noise_scale")
	}
	if viper.IsSet("tts.length_scale") {
		cfg.LengthScale = viper.GetFloat64("tts.length_scale")
	}

	cfg.Cache = loadCacheConfig()
	cfg.Espeak = loadEspeakConfig()
	cfg.Flite = loadFliteConfig()
	cfg.Festival = loadFestivalConfig()
	cfg.NanoTTS = loadNanoTTSConfig()
	cfg.MaryTTS = loadMaryTTSConfig()
	cfg.GlowSpeak = loadGlowSpeakConfig()
	cfg.Remote = loadRemoteConfig()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadCacheConfig() CacheConfig {
	cfg := DefaultConfig().Cache

	if viper.IsSet("tts.cache.enabled") {
		cfg.Enabled = viper.GetBool("tts.cache.enabled")
	}
	if viper.IsSet("tts.cache.dir") {
		cfg.Dir = expandPath(viper.GetString("tts.cache.dir"))
	}
	if viper.IsSet("tts.cache.max_size") {
		cfg.MaxSize = viper.GetInt64("tts.cache.max_size")
	}
	if viper.IsSet("tts.cache.compression_level") {
		cfg.CompressionLevel = viper.GetInt("tts.cache.compression_level")
	}
	return cfg
}

func loadEspeakConfig() EspeakConfig {
	cfg := DefaultConfig().Espeak

	if viper.IsSet("tts.espeak.enabled") {
		cfg.Enabled = viper.GetBool("tts.espeak.enabled")
	}
	if viper.IsSet("tts.espeak.required") {
		cfg.Required = viper.GetBool("tts.espeak.required")
	}
	if viper.IsSet("tts.espeak.binary") {
		cfg.Binary = viper.GetString("tts.espeak.binary")
	}
	if viper.IsSet("tts.espeak.timeout") {
		if d, err := time.ParseDuration(viper.GetString("tts.espeak.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}

func loadFliteConfig() FliteConfig {
	cfg := DefaultConfig().Flite

	if viper.IsSet("tts.flite.enabled") {
		cfg.Enabled = viper.GetBool("tts.flite.enabled")
	}
	if viper.IsSet("tts.flite.required") {
		cfg.Required = viper.GetBool("tts.flite.required")
	}
	if viper.IsSet("tts.flite.voice_dir") {
		cfg.VoiceDir = expandPath(viper.GetString("tts.flite.voice_dir"))
	}
	if viper.IsSet("tts.flite.timeout") {
		if d, err := time.ParseDuration(viper.GetString("tts.flite.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}

func loadFestivalConfig() FestivalConfig {
	cfg := DefaultConfig().Festival

	if viper.IsSet("tts.festival.enabled") {
		cfg.Enabled = viper.GetBool("tts.festival.enabled")
	}
	if viper.IsSet("tts.festival.required") {
		cfg.Required = viper.GetBool("tts.festival.required")
	}
	if viper.IsSet("tts.festival.timeout") {
		if d, err := time.ParseDuration(viper.GetString("tts.festival.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}

func loadNanoTTSConfig() NanoTTSConfig {
	cfg := DefaultConfig().NanoTTS

	if viper.IsSet("tts.nanotts.enabled") {
		cfg.Enabled = viper.GetBool("tts.nanotts.enabled")
	}
	if viper.IsSet("tts.nanotts.required") {
		cfg.Required = viper.GetBool("tts.nanotts.required")
	}
	if viper.IsSet("tts.nanotts.timeout") {
		if d, err := time.ParseDuration(viper.GetString("tts.nanotts.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}

func loadMaryTTSConfig() MaryTTSConfig {
	cfg := DefaultConfig().MaryTTS

	if viper.IsSet("tts.marytts.enabled") {
		cfg.Enabled = viper.GetBool("tts.marytts.enabled")
	}
	if viper.IsSet("tts.marytts.required") {
		cfg.Required = viper.GetBool("tts.marytts.required")
	}
	if viper.IsSet("tts.marytts.dir") {
		cfg.Dir = expandPath(viper.GetString("tts.marytts.dir"))
	}
	if viper.IsSet("tts.marytts.timeout") {
		if d, err := time.ParseDuration(viper.GetString("tts.marytts.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}

func loadGlowSpeakConfig() GlowSpeakConfig {
	cfg := DefaultConfig().GlowSpeak

	if viper.IsSet("tts.glow_speak.enabled") {
		cfg.Enabled = viper.GetBool("tts.glow_speak.enabled")
	}
	if viper.IsSet("tts.glow_speak.required") {
		cfg.Required = viper.GetBool("tts.glow_speak.required")
	}
	if viper.IsSet("tts.glow_speak.models_dir") {
		cfg.ModelsDir = expandPath(viper.GetString("tts.glow_speak.models_dir"))
	}
	return cfg
}

func loadRemoteConfig() RemoteConfig {
	cfg := DefaultConfig().Remote

	if viper.IsSet("tts.remote.enabled") {
		cfg.Enabled = viper.GetBool("tts.remote.enabled")
	}
	if viper.IsSet("tts.remote.required") {
		cfg.Required = viper.GetBool("tts.remote.required")
	}
	if viper.IsSet("tts.remote.name") {
		cfg.Name = viper.GetString("tts.remote.name")
	}
	if viper.IsSet("tts.remote.url") {
		cfg.URL = viper.GetString("tts.remote.url")
	}
	if viper.IsSet("tts.remote.tls_verify") {
		cfg.TLSVerify = viper.GetBool("tts.remote.tls_verify")
	}
	if viper.IsSet("tts.remote.timeout") {
		if d, err := time.ParseDuration(viper.GetString("tts.remote.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	if viper.IsSet("tts.remote.requests_per_minute") {
		cfg.RequestsPerMinute = viper.GetInt("tts.remote.requests_per_minute")
	}
	return cfg
}

// SetDefaults seeds Viper with the default configuration so a written
// config file shows every available key.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("tts.default_voice", defaults.DefaultVoice)
	viper.SetDefault("tts.quality", defaults.Quality)
	viper.SetDefault("tts.denoiser_strength", defaults.DenoiserStrength)
	viper.SetDefault("tts.noise_scale", defaults.NoiseScale)
	viper.SetDefault("tts.length_scale", defaults.LengthScale)

	viper.SetDefault("tts.cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("tts.cache.max_size", defaults.Cache.MaxSize)
	viper.SetDefault("tts.cache.compression_level", defaults.Cache.CompressionLevel)

	viper.SetDefault("tts.espeak.enabled", defaults.Espeak.Enabled)
	viper.SetDefault("tts.espeak.required", defaults.Espeak.Required)
	viper.SetDefault("tts.espeak.timeout", defaults.Espeak.Timeout.String())

	viper.SetDefault("tts.flite.enabled", defaults.Flite.Enabled)
	viper.SetDefault("tts.flite.required", defaults.Flite.Required)
	viper.SetDefault("tts.flite.voice_dir", defaults.Flite.VoiceDir)
	viper.SetDefault("tts.flite.timeout", defaults.Flite.Timeout.String())

	viper.SetDefault("tts.festival.enabled", defaults.Festival.Enabled)
	viper.SetDefault("tts.festival.required", defaults.Festival.Required)
	viper.SetDefault("tts.festival.timeout", defaults.Festival.Timeout.String())

	viper.SetDefault("tts.nanotts.enabled", defaults.NanoTTS.Enabled)
	viper.SetDefault("tts.nanotts.required", defaults.NanoTTS.Required)
	viper.SetDefault("tts.nanotts.timeout", defaults.NanoTTS.Timeout.String())

	viper.SetDefault("tts.marytts.enabled", defaults.MaryTTS.Enabled)
	viper.SetDefault("tts.marytts.required", defaults.MaryTTS.Required)
	viper.SetDefault("tts.marytts.timeout", defaults.MaryTTS.Timeout.String())

	viper.SetDefault("tts.glow_speak.enabled", defaults.GlowSpeak.Enabled)
	viper.SetDefault("tts.glow_speak.required", defaults.GlowSpeak.Required)

	viper.SetDefault("tts.remote.enabled", defaults.Remote.Enabled)
	viper.SetDefault("tts.remote.required", defaults.Remote.Required)
	viper.SetDefault("tts.remote.name", defaults.Remote.Name)
	viper.SetDefault("tts.remote.tls_verify", defaults.Remote.TLSVerify)
	viper.SetDefault("tts.remote.timeout", defaults.Remote.Timeout.String())
}
