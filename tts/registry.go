package tts

import (
	"context"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Registry holds the set of engines enabled for this process. It is
// built once at startup and never mutated at request time; engines keep
// their own lazily-initialized internals (loaded models, persistent
// subprocess handles).
type Registry struct {
	engines map[string]Engine
	logger  *log.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		engines: make(map[string]Engine),
		logger:  logger.With("component", "registry"),
	}
}

// Register adds an engine under its short name. Later registrations for
// the same name replace earlier ones.
func (r *Registry) Register(e Engine) {
	name := strings.ToLower(e.Name())
	r.engines[name] = e
	r.logger.Debug("registered engine", "engine", name)
}

// Engine looks up an engine by short name, case-insensitively.
func (r *Registry) Engine(name string) (Engine, bool) {
	e, ok := r.engines[strings.ToLower(name)]
	return e, ok
}

// Has reports whether an engine is registered under the given name.
func (r *Registry) Has(name string) bool {
	_, ok := r.engines[strings.ToLower(name)]
	return ok
}

// Names returns the registered engine names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Voices enumerates all voices from all registered engines that pass the
// filter. Per-engine probe failures are logged and skipped so one broken
// backend never hides the rest of the catalog.
func (r *Registry) Voices(ctx context.Context, filter VoiceFilter) ([]CatalogEntry, error) {
	var entries []CatalogEntry
	for _, name := range r.Names() {
		engine := r.engines[name]
		voices, err := engine.Voices(ctx)
		if err != nil {
			r.logger.Warn("voice enumeration failed", "engine", name, "err", err)
			continue
		}
		for _, v := range voices {
			if !filter.Matches(name, v) {
				continue
			}
			entries = append(entries, CatalogEntry{
				FullID: name + ":" + v.ID,
				Voice:  v,
			})
		}
	}
	return entries, nil
}

// Voice looks up one voice record on one engine. The enumeration runs
// fresh so on-disk availability is current.
func (r *Registry) Voice(ctx context.Context, engine, voiceID string) (Voice, bool) {
	e, ok := r.Engine(engine)
	if !ok {
		return Voice{}, false
	}
	voices, err := e.Voices(ctx)
	if err != nil {
		return Voice{}, false
	}
	for _, v := range voices {
		if v.ID == voiceID {
			return v, true
		}
	}
	return Voice{}, false
}

// Languages returns the distinct language codes available, optionally
// limited to one engine.
func (r *Registry) Languages(ctx context.Context, engine string) ([]string, error) {
	entries, err := r.Voices(ctx, VoiceFilter{Engine: engine})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var langs []string
	for _, entry := range entries {
		lang := entry.Voice.Language
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs, nil
}

// Shutdown stops every registered engine. The first error is returned
// but all engines are shut down regardless.
func (r *Registry) Shutdown() error {
	var first error
	for _, name := range r.Names() {
		if err := r.engines[name].Shutdown(); err != nil {
			r.logger.Warn("engine shutdown failed", "engine", name, "err", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
