package tts

import "context"

// Engine is the capability set every backend implements: enumerate
// voices and synthesize one utterance. Implementations live under
// tts/engines.
type Engine interface {
	// Name returns the engine's short registration name ("espeak",
	// "glow-speak", ...).
	Name() string

	// Voices enumerates the currently available voices. The set is
	// re-probed on each call and reflects on-disk/model availability.
	// Engines that probe external state degrade to an empty slice on
	// probe failure rather than failing the request.
	Voices(ctx context.Context) ([]Voice, error)

	// Say synthesizes text with the given engine-local voice id and
	// returns a complete WAV file. It fails when the voice is unknown,
	// the backend errors, or the backend produces no data.
	Say(ctx context.Context, text, voiceID string, opts SynthesisOptions) ([]byte, error)

	// Shutdown releases subprocesses, sessions and cached models.
	Shutdown() error
}

// Cache is the result store consulted by the orchestrator. Failures are
// never fatal to synthesis; implementations report misses via ok=false
// and the orchestrator logs and swallows Put errors.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, wav []byte) error
}
