package proc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voxgate/tts"
)

// fliteCatalog lists the voices flite can load; a voice is advertised
// only when its .flitevox file is present in the voice directory.
var fliteCatalog = []tts.Voice{
	{ID: "cmu_us_aew", Name: "cmu_us_aew", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_ahw", Name: "cmu_us_ahw", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_aup", Name: "cmu_us_aup", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_awb", Name: "cmu_us_awb", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_axb", Name: "cmu_us_axb", Gender: "F", Locale: "en-in", Language: "en"},
	{ID: "cmu_us_bdl", Name: "cmu_us_bdl", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_clb", Name: "cmu_us_clb", Gender: "F", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_eey", Name: "cmu_us_eey", Gender: "F", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_fem", Name: "cmu_us_fem", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_gka", Name: "cmu_us_gka", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_jmk", Name: "cmu_us_jmk", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_ksp", Name: "cmu_us_ksp", Gender: "M", Locale: "en-in", Language: "en"},
	{ID: "cmu_us_ljm", Name: "cmu_us_ljm", Gender: "F", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_lnh", Name: "cmu_us_lnh", Gender: "F", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_rms", Name: "cmu_us_rms", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_rxr", Name: "cmu_us_rxr", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_slp", Name: "cmu_us_slp", Gender: "F", Locale: "en-in", Language: "en"},
	{ID: "cmu_us_slt", Name: "cmu_us_slt", Gender: "F", Locale: "en-us", Language: "en"},
	{ID: "mycroft_voice_4.0", Name: "mycroft_voice_4.0", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "cmu_indic_hin_ab", Name: "cmu_indic_hin_ab", Gender: "F", Locale: "hi-in", Language: "hi"},
	{ID: "cmu_indic_ben_rm", Name: "cmu_indic_ben_rm", Gender: "F", Locale: "bn-in", Language: "bn"},
	{ID: "cmu_indic_guj_ad", Name: "cmu_indic_guj_ad", Gender: "F", Locale: "gu-in", Language: "gu"},
	{ID: "cmu_indic_guj_dp", Name: "cmu_indic_guj_dp", Gender: "F", Locale: "gu-in", Language: "gu"},
	{ID: "cmu_indic_guj_kt", Name: "cmu_indic_guj_kt", Gender: "F", Locale: "gu-in", Language: "gu"},
	{ID: "cmu_indic_kan_plv", Name: "cmu_indic_kan_plv", Gender: "F", Locale: "kn-in", Language: "kn"},
	{ID: "cmu_indic_mar_aup", Name: "cmu_indic_mar_aup", Gender: "F", Locale: "mr-in", Language: "mr"},
	{ID: "cmu_indic_mar_slp", Name: "cmu_indic_mar_slp", Gender: "F", Locale: "mr-in", Language: "mr"},
	{ID: "cmu_indic_pan_amp", Name: "cmu_indic_pan_amp", Gender: "F", Locale: "pa-in", Language: "pa"},
	{ID: "cmu_indic_tam_sdr", Name: "cmu_indic_tam_sdr", Gender: "F", Locale: "ta-in", Language: "ta"},
	{ID: "cmu_indic_tel_kpn", Name: "cmu_indic_tel_kpn", Gender: "F", Locale: "te-in", Language: "te"},
	{ID: "cmu_indic_tel_sk", Name: "cmu_indic_tel_sk", Gender: "F", Locale: "te-in", Language: "te"},
	{ID: "cmu_indic_tel_ss", Name: "cmu_indic_tel_ss", Gender: "F", Locale: "te-in", Language: "te"},
}

// Flite wraps the flite synthesizer with a directory of .flitevox
// voice files.
type Flite struct {
	voiceDir string
	run      runner
}

// NewFlite probes for the flite binary and the voice directory.
func NewFlite(voiceDir string, timeout time.Duration, logger *log.Logger) (*Flite, error) {
	if logger == nil {
		logger = log.Default()
	}
	if !which("flite") {
		return nil, fmt.Errorf("%w: flite", tts.ErrEngineUnavailable)
	}
	if info, err := os.Stat(voiceDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: voice directory %s", tts.ErrEngineUnavailable, voiceDir)
	}
	return &Flite{
		voiceDir: voiceDir,
		run:      runner{timeout: timeout, logger: logger.With("engine", "flite")},
	}, nil
}

// Name implements tts.Engine.
func (f *Flite) Name() string { return "flite" }

// Voices lists catalog voices whose .flitevox file exists on disk.
func (f *Flite) Voices(context.Context) ([]tts.Voice, error) {
	var voices []tts.Voice
	for _, v := range fliteCatalog {
		if _, err := os.Stat(f.voicePath(v.ID)); err == nil {
			voices = append(voices, v)
		}
	}
	return voices, nil
}

// Say synthesizes via `flite -voice <file> -o /dev/stdout -t <text>`.
func (f *Flite) Say(ctx context.Context, text, voiceID string, _ tts.SynthesisOptions) ([]byte, error) {
	path := f.voicePath(voiceID)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", tts.ErrVoiceNotFound, voiceID)
	}
	return f.run.run(ctx, "flite", []string{"-voice", path, "-o", "/dev/stdout", "-t", text}, nil)
}

// Shutdown implements tts.Engine.
func (f *Flite) Shutdown() error { return nil }

func (f *Flite) voicePath(voiceID string) string {
	return filepath.Join(f.voiceDir, voiceID+".flitevox")
}
