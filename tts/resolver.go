package tts

import (
	"strings"

	"github.com/charmbracelet/log"
)

// Resolver maps user-facing voice/language shorthand to a concrete
// "engine:voice[#speaker]" reference against the set of registered
// engines. The alias table is fixed at construction; user-preferred
// voices are inserted ahead of the defaults.
type Resolver struct {
	aliases  map[string][]string
	registry *Registry
	logger   *log.Logger
}

// NewResolver builds a resolver over the registry using the default
// alias table.
func NewResolver(registry *Registry, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		aliases:  defaultAliases(),
		registry: registry,
		logger:   logger.With("component", "resolver"),
	}
}

// Prefer inserts a voice as the highest-priority candidate for a
// language, ahead of any existing aliases. A voice already in the list
// moves to the front, so reapplying the same overrides stays stable.
func (r *Resolver) Prefer(lang, voice string) {
	key := strings.ToLower(lang)
	out := make([]string, 0, len(r.aliases[key])+1)
	out = append(out, voice)
	for _, v := range r.aliases[key] {
		if v != voice {
			out = append(out, v)
		}
	}
	r.aliases[key] = out
}

// SetAliases inserts user override candidates ahead of the built-in
// candidates for each language, keeping the defaults as fallback. Keys
// are lowercased.
func (r *Resolver) SetAliases(overrides map[string][]string) {
	for key, candidates := range overrides {
		for i := len(candidates) - 1; i >= 0; i-- {
			r.Prefer(key, candidates[i])
		}
	}
}

// Resolve maps a voice string of the form "engine:voice[#speaker]" or a
// bare language/locale code to the first candidate whose engine is
// registered. fallback, when non-empty, is tried after the alias
// entries. A "#speaker" suffix is stripped before lookup and reattached
// to the winning candidate.
func (r *Resolver) Resolve(voice, fallback string) (string, error) {
	speaker := ""
	base := voice
	if i := strings.Index(base, "#"); i >= 0 {
		speaker = base[i+1:]
		base = base[:i]
	}

	key := strings.ToLower(base)
	candidates, ok := r.aliases[key]
	if !ok {
		// Standard language-tag fallback: en-US -> en.
		if i := strings.IndexAny(key, "-_"); i >= 0 {
			candidates = r.aliases[key[:i]]
		}
	}

	ordered := make([]string, 0, len(candidates)+3)
	ordered = append(ordered, candidates...)
	if fallback != "" {
		ordered = append(ordered, fallback)
	}
	ordered = append(ordered, base)
	if !strings.Contains(base, ":") {
		// Last resort for bare language codes.
		ordered = append(ordered, "espeak:"+base)
	}

	for _, candidate := range ordered {
		ref := ParseVoiceRef(candidate)
		if ref.Engine == "" || !r.registry.Has(ref.Engine) {
			continue
		}
		if speaker != "" {
			ref.Speaker = speaker
		}
		resolved := ref.String()
		r.logger.Debug("resolved voice", "input", voice, "resolved", resolved)
		return resolved, nil
	}

	return "", NewError(ErrVoiceNotResolved, "resolver", "resolve").
		WithContext("voice", voice)
}
