// Package engines assembles the engine registry from configuration.
// Each enabled engine is probed at build time; engines whose binaries,
// model directories, or servers are absent drop out with a log line
// instead of failing the whole gateway, unless the engine is marked
// required in its configuration.
package engines

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voxgate/tts"
	"github.com/dgnsrekt/voxgate/tts/engines/glowspeak"
	"github.com/dgnsrekt/voxgate/tts/engines/mary"
	"github.com/dgnsrekt/voxgate/tts/engines/proc"
	"github.com/dgnsrekt/voxgate/tts/engines/remote"
)

// Build constructs the registry for cfg. An empty registry is valid;
// the resolver just won't find any engine-backed candidates. A non-nil
// error means a required engine failed its probe.
func Build(cfg tts.Config, logger *log.Logger) (*tts.Registry, error) {
	if logger == nil {
		logger = log.Default()
	}
	registry := tts.NewRegistry(logger)

	var buildErr error
	register := func(name string, required bool, engine tts.Engine, err error) {
		switch {
		case err == nil:
			registry.Register(engine)
			logger.Info("engine enabled", "engine", name)
		case required:
			logger.Error("required engine failed", "engine", name, "err", err)
			if buildErr == nil {
				buildErr = fmt.Errorf("required engine %s: %w", name, err)
			}
		case errors.Is(err, tts.ErrEngineUnavailable):
			logger.Debug("engine unavailable", "engine", name, "err", err)
		default:
			logger.Warn("engine disabled", "engine", name, "err", err)
		}
	}

	if cfg.Espeak.Enabled {
		engine, err := proc.NewEspeak(cfg.Espeak.Binary, cfg.Espeak.Timeout, logger)
		register("espeak", cfg.Espeak.Required, engine, err)
	}
	if cfg.Flite.Enabled {
		engine, err := proc.NewFlite(cfg.Flite.VoiceDir, cfg.Flite.Timeout, logger)
		register("flite", cfg.Flite.Required, engine, err)
	}
	if cfg.Festival.Enabled {
		engine, err := proc.NewFestival(cfg.Festival.Timeout, logger)
		register("festival", cfg.Festival.Required, engine, err)
	}
	if cfg.NanoTTS.Enabled {
		engine, err := proc.NewNanoTTS(cfg.NanoTTS.Timeout, logger)
		register("nanotts", cfg.NanoTTS.Required, engine, err)
	}
	if cfg.MaryTTS.Enabled {
		if cfg.MaryTTS.Dir == "" {
			register("marytts", cfg.MaryTTS.Required, nil,
				fmt.Errorf("%w: marytts dir not configured", tts.ErrEngineUnavailable))
		} else {
			engine, err := mary.New(cfg.MaryTTS.Dir, cfg.MaryTTS.Timeout, logger)
			register("marytts", cfg.MaryTTS.Required, engine, err)
		}
	}
	if cfg.GlowSpeak.Enabled {
		if cfg.GlowSpeak.ModelsDir == "" {
			register("glow-speak", cfg.GlowSpeak.Required, nil,
				fmt.Errorf("%w: glow_speak models_dir not configured", tts.ErrEngineUnavailable))
		} else {
			engine, err := glowspeak.New(cfg.GlowSpeak.ModelsDir, logger)
			register("glow-speak", cfg.GlowSpeak.Required, engine, err)
		}
	}
	if cfg.Remote.Enabled && cfg.Remote.URL != "" {
		tlsVerify := cfg.Remote.TLSVerify
		engine, err := remote.New(remote.Config{
			Name:              cfg.Remote.Name,
			URL:               cfg.Remote.URL,
			TLSVerify:         &tlsVerify,
			Timeout:           cfg.Remote.Timeout,
			RequestsPerMinute: cfg.Remote.RequestsPerMinute,
		}, logger)
		register(cfg.Remote.Name, cfg.Remote.Required, engine, err)
	}

	return registry, buildErr
}
