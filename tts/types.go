package tts

import (
	"fmt"
	"strings"
)

// Voice represents one speaker/style exposed by an engine. The JSON
// shape matches the /api/voices wire format.
type Voice struct {
	ID       string `json:"id"`       // engine-local identifier
	Name     string `json:"name"`     // human-readable name
	Gender   string `json:"gender"`   // "M", "F" or "" when unknown
	Language string `json:"language"` // ISO-639 language code (e.g. "en")
	Locale   string `json:"locale"`   // language plus region (e.g. "en-US")

	// Tag carries per-voice synthesis overrides shipped with the model.
	Tag *VoiceSettings `json:"tag,omitempty"`

	// Multispeaker voices expose named speakers mapped to model indices.
	Multispeaker bool           `json:"multispeaker,omitempty"`
	Speakers     map[string]int `json:"speakers,omitempty"`
}

// VoiceSettings are optional per-voice synthesis parameter overrides.
// A nil pointer field means "no override".
type VoiceSettings struct {
	NoiseScale       *float64 `yaml:"noise_scale" json:"noise_scale,omitempty"`
	LengthScale      *float64 `yaml:"length_scale" json:"length_scale,omitempty"`
	DenoiserStrength *float64 `yaml:"denoiser_strength" json:"denoiser_strength,omitempty"`
}

// SynthesisOptions control a single synthesis request. Merging precedence
// is request > voice tag > engine defaults.
type SynthesisOptions struct {
	Quality          string  // vocoder quality: "high", "medium" or "low"
	DenoiserStrength float64 // spectral subtraction strength, 0 disables
	NoiseScale       float64 // prosodic variability
	LengthScale      float64 // speaking rate, <1.0 speeds up
	SSML             bool    // input is SSML markup
	SpeakerID        string  // multispeaker selection, engine-local

	// Explicit marks the fields the caller actually supplied, so
	// voice-tag overrides only fill the rest (precedence: request >
	// voice tag > defaults).
	Explicit map[string]bool
}

// DefaultOptions returns the gateway-wide synthesis defaults.
func DefaultOptions() SynthesisOptions {
	return SynthesisOptions{
		Quality:          "high",
		DenoiserStrength: 0.005,
		NoiseScale:       0.667,
		LengthScale:      1.0,
	}
}

// Merge applies voice-tag overrides on top of o for fields the caller
// did not set explicitly.
func (o SynthesisOptions) Merge(tag *VoiceSettings) SynthesisOptions {
	if tag == nil {
		return o
	}
	if tag.NoiseScale != nil && !o.Explicit["noise_scale"] {
		o.NoiseScale = *tag.NoiseScale
	}
	if tag.LengthScale != nil && !o.Explicit["length_scale"] {
		o.LengthScale = *tag.LengthScale
	}
	if tag.DenoiserStrength != nil && !o.Explicit["denoiser_strength"] {
		o.DenoiserStrength = *tag.DenoiserStrength
	}
	return o
}

// settingsString serializes the option values that affect audio content,
// used for cache keying.
func (o SynthesisOptions) settingsString() string {
	return fmt.Sprintf("quality=%s;denoiser_strength=%v;noise_scale=%v;length_scale=%v;ssml=%v",
		o.Quality, o.DenoiserStrength, o.NoiseScale, o.LengthScale, o.SSML)
}

// VoiceRef is a resolved voice reference: engine name, engine-local voice
// id and an optional speaker id.
type VoiceRef struct {
	Engine  string
	Voice   string
	Speaker string
}

// ParseVoiceRef splits an "engine:voice[#speaker]" string. The engine part
// is empty when the string carries no engine prefix.
func ParseVoiceRef(s string) VoiceRef {
	var ref VoiceRef
	if i := strings.Index(s, "#"); i >= 0 {
		ref.Speaker = s[i+1:]
		s = s[:i]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		ref.Engine = s[:i]
		ref.Voice = s[i+1:]
	} else {
		ref.Voice = s
	}
	return ref
}

// String renders the reference back to "engine:voice[#speaker]" form.
func (r VoiceRef) String() string {
	s := r.Voice
	if r.Engine != "" {
		s = r.Engine + ":" + s
	}
	if r.Speaker != "" {
		s += "#" + r.Speaker
	}
	return s
}

// VoiceFilter narrows the catalog returned by the gateway.
type VoiceFilter struct {
	Language string // ISO-639 language code
	Locale   string // language plus region
	Gender   string
	Engine   string // engine short name
}

// Matches reports whether the voice from the named engine passes the filter.
func (f VoiceFilter) Matches(engine string, v Voice) bool {
	if f.Engine != "" && !strings.EqualFold(f.Engine, engine) {
		return false
	}
	if f.Language != "" && !strings.EqualFold(f.Language, v.Language) {
		return false
	}
	if f.Locale != "" && !strings.EqualFold(f.Locale, v.Locale) {
		return false
	}
	if f.Gender != "" && !strings.EqualFold(f.Gender, v.Gender) {
		return false
	}
	return true
}

// CatalogEntry pairs a fully-qualified voice id with its voice record.
type CatalogEntry struct {
	FullID string // "engine:voice"
	Voice  Voice
}
