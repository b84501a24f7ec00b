package proc

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voxgate/tts"
)

// nanoCatalog lists the voices bundled with nanotts.
var nanoCatalog = []tts.Voice{
	{ID: "en-GB", Name: "en-GB", Gender: "F", Locale: "en-gb", Language: "en"},
	{ID: "en-US", Name: "en-US", Gender: "F", Locale: "en-us", Language: "en"},
	{ID: "de-DE", Name: "de-DE", Gender: "F", Locale: "de-de", Language: "de"},
	{ID: "fr-FR", Name: "fr-FR", Gender: "F", Locale: "fr-fr", Language: "fr"},
	{ID: "es-ES", Name: "es-ES", Gender: "F", Locale: "es-es", Language: "es"},
	{ID: "it-IT", Name: "it-IT", Gender: "F", Locale: "it-it", Language: "it"},
}

// NanoTTS wraps the nanotts command-line synthesizer.
type NanoTTS struct {
	run runner
}

// NewNanoTTS probes for the nanotts binary.
func NewNanoTTS(timeout time.Duration, logger *log.Logger) (*NanoTTS, error) {
	if logger == nil {
		logger = log.Default()
	}
	if !which("nanotts") {
		return nil, fmt.Errorf("%w: nanotts", tts.ErrEngineUnavailable)
	}
	return &NanoTTS{
		run: runner{timeout: timeout, logger: logger.With("engine", "nanotts")},
	}, nil
}

// Name implements tts.Engine.
func (n *NanoTTS) Name() string { return "nanotts" }

// Voices returns the fixed nanotts catalog.
func (n *NanoTTS) Voices(context.Context) ([]tts.Voice, error) {
	out := make([]tts.Voice, len(nanoCatalog))
	copy(out, nanoCatalog)
	return out, nil
}

// Say synthesizes text from stdin into a temp WAV file.
func (n *NanoTTS) Say(ctx context.Context, text, voiceID string, _ tts.SynthesisOptions) ([]byte, error) {
	tmp, err := os.CreateTemp("", "voxgate-nanotts-*.wav")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	args := []string{"-v", voiceID, "-o", tmpPath}
	if err := n.run.exec(ctx, "nanotts", args, []byte(text)); err != nil {
		return nil, err
	}
	return os.ReadFile(tmpPath)
}

// Shutdown implements tts.Engine.
func (n *NanoTTS) Shutdown() error { return nil }
