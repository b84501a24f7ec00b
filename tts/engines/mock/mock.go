// Package mock provides a deterministic engine for testing the
// orchestrator and the HTTP layer.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/dgnsrekt/voxgate/tts"
	"github.com/dgnsrekt/voxgate/tts/wave"
)

// Engine implements tts.Engine with synthetic audio: a fixed-duration
// constant-amplitude tone per call. Calls are recorded for assertions.
type Engine struct {
	mu sync.Mutex

	name      string
	rate      int
	duration  time.Duration
	amplitude int16
	delay     time.Duration
	voices    []tts.Voice
	shutdown  bool

	failErr   error
	emptyWAV  bool
	callCount int
	sayCalls  []SayCall
}

// SayCall records one Say invocation.
type SayCall struct {
	Text    string
	VoiceID string
	Options tts.SynthesisOptions
}

// New creates a mock engine registered under name, producing one second
// of audio at the given rate per call.
func New(name string, rate int) *Engine {
	return &Engine{
		name:      name,
		rate:      rate,
		duration:  time.Second,
		amplitude: 1000,
		voices: []tts.Voice{
			{ID: "A", Name: "Mock A", Language: "en", Locale: "en-US", Gender: "F"},
			{ID: "B", Name: "Mock B", Language: "en", Locale: "en-GB", Gender: "M"},
		},
	}
}

// Name implements tts.Engine.
func (e *Engine) Name() string { return e.name }

// Voices implements tts.Engine.
func (e *Engine) Voices(context.Context) ([]tts.Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.shutdown {
		return nil, tts.ErrEngineShutdown
	}
	out := make([]tts.Voice, len(e.voices))
	copy(out, e.voices)
	return out, nil
}

// Say implements tts.Engine.
func (e *Engine) Say(_ context.Context, text, voiceID string, opts tts.SynthesisOptions) ([]byte, error) {
	e.mu.Lock()
	e.callCount++
	e.sayCalls = append(e.sayCalls, SayCall{Text: text, VoiceID: voiceID, Options: opts})
	failErr := e.failErr
	empty := e.emptyWAV
	delay := e.delay
	e.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if failErr != nil {
		return nil, failErr
	}
	if empty {
		return nil, nil
	}

	frames := int(e.duration.Seconds() * float64(e.rate))
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = e.amplitude
	}
	return wave.FromInt16(samples, e.rate).Encode(), nil
}

// Shutdown implements tts.Engine.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdown = true
	return nil
}

// Test controls.

// SetVoices replaces the advertised voice list.
func (e *Engine) SetVoices(voices []tts.Voice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices = voices
}

// SetDuration changes the length of generated audio.
func (e *Engine) SetDuration(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.duration = d
}

// SetDelay adds artificial latency to Say.
func (e *Engine) SetDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = d
}

// FailWith makes every Say return err.
func (e *Engine) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failErr = err
}

// ReturnEmpty makes every Say return zero bytes without error.
func (e *Engine) ReturnEmpty(empty bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emptyWAV = empty
}

// CallCount returns the number of Say invocations.
func (e *Engine) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}

// Calls returns a copy of the recorded Say invocations.
func (e *Engine) Calls() []SayCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]SayCall, len(e.sayCalls))
	copy(out, e.sayCalls)
	return out
}
