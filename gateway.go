package main

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"

	"github.com/dgnsrekt/voxgate/internal/cache"
	"github.com/dgnsrekt/voxgate/tts"
	"github.com/dgnsrekt/voxgate/tts/engines"
)

// gateway bundles the pieces a command needs to serve or speak.
type gateway struct {
	cfg      tts.Config
	registry *tts.Registry
	synth    *tts.Synthesizer
	store    *cache.Store // nil when the cache is disabled
}

// buildGateway assembles the engine registry, resolver, cache and
// orchestrator from the loaded configuration.
func buildGateway(logger *log.Logger) (*gateway, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry, err := engines.Build(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("building engines: %w", err)
	}

	resolver := tts.NewResolver(registry, logger)
	if cfg.AliasFile != "" {
		aliases, err := tts.LoadAliasFile(cfg.AliasFile)
		if err != nil {
			logger.Warn("could not load alias file", "path", cfg.AliasFile, "err", err)
		} else {
			resolver.SetAliases(aliases)
		}
	}

	var store *cache.Store
	var c tts.Cache
	if cfg.Cache.Enabled {
		dir, err := cacheDir(cfg)
		if err != nil {
			logger.Warn("cache disabled", "err", err)
		} else {
			store, err = cache.New(dir, cfg.Cache.MaxSize, cfg.Cache.CompressionLevel)
			if err != nil {
				logger.Warn("cache disabled", "err", err)
			} else {
				c = store
			}
		}
	}

	synth := tts.NewSynthesizer(registry, resolver, c, logger)
	synth.Timeout = cfg.Timeout

	return &gateway{cfg: cfg, registry: registry, synth: synth, store: store}, nil
}

// Close shuts down the engines and flushes the cache index.
func (g *gateway) Close() {
	if err := g.registry.Shutdown(); err != nil {
		log.Warn("engine shutdown", "err", err)
	}
	if g.store != nil {
		if err := g.store.Close(); err != nil {
			log.Warn("cache close", "err", err)
		}
	}
}

// cacheDir picks the configured cache directory, falling back to the
// user cache scope.
func cacheDir(cfg tts.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	dir, err := gap.NewScope(gap.User, "voxgate").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wav"), nil
}

// openCache opens just the result cache, for the cache subcommands.
func openCache() (*cache.Store, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return nil, err
	}
	return cache.New(dir, cfg.Cache.MaxSize, cfg.Cache.CompressionLevel)
}
