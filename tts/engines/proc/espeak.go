package proc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voxgate/tts"
)

// Espeak wraps the espeak / espeak-ng command-line synthesizer.
type Espeak struct {
	binary string
	run    runner
}

// NewEspeak probes for espeak-ng, falling back to espeak. It fails when
// neither binary is on PATH.
func NewEspeak(binary string, timeout time.Duration, logger *log.Logger) (*Espeak, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("engine", "espeak")

	if binary == "" {
		binary = "espeak-ng"
		if !which(binary) {
			binary = "espeak"
		}
	}
	if !which(binary) {
		return nil, fmt.Errorf("%w: %s", tts.ErrEngineUnavailable, binary)
	}
	return &Espeak{
		binary: binary,
		run:    runner{timeout: timeout, logger: logger},
	}, nil
}

// Name implements tts.Engine.
func (e *Espeak) Name() string { return "espeak" }

// Voices parses `espeak --voices` output. The probe degrades to an
// empty catalog on failure rather than failing the request.
func (e *Espeak) Voices(ctx context.Context) ([]tts.Voice, error) {
	out, err := e.run.run(ctx, e.binary, []string{"--voices"}, nil)
	if err != nil {
		e.run.logger.Warn("voice listing failed", "err", err)
		return nil, nil
	}
	return parseEspeakVoices(string(out)), nil
}

// parseEspeakVoices reads the table printed by `espeak --voices`:
// priority, locale, age/gender, name, file, aliases.
func parseEspeakVoices(out string) []tts.Voice {
	var voices []tts.Voice
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if i == 0 {
			// Header row.
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 4 {
			continue
		}
		locale := parts[1]
		language := locale
		if j := strings.Index(language, "-"); j >= 0 {
			language = language[:j]
		}
		// espeak reports Chinese as bare cmn/yue.
		switch locale {
		case "cmn":
			locale, language = "zh-cmn", "zh"
		case "yue":
			locale, language = "zh-yue", "zh"
		}
		gender := ""
		if ag := parts[2]; ag != "" {
			gender = strings.ToUpper(ag[len(ag)-1:])
		}
		if gender != "M" && gender != "F" {
			gender = ""
		}
		voices = append(voices, tts.Voice{
			ID:       parts[1],
			Name:     parts[3],
			Gender:   gender,
			Language: language,
			Locale:   locale,
		})
	}
	return voices
}

// Say synthesizes text via `espeak -v <voice> --stdout`.
func (e *Espeak) Say(ctx context.Context, text, voiceID string, _ tts.SynthesisOptions) ([]byte, error) {
	return e.run.run(ctx, e.binary, []string{"-v", voiceID, "--stdout", text}, nil)
}

// Shutdown implements tts.Engine; one-shot engines hold no resources.
func (e *Espeak) Shutdown() error { return nil }
