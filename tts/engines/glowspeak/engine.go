// Package glowspeak runs glow-speak voices fully in-process: an eSpeak
// phonemizer feeds a GlowTTS acoustic model, whose mel output drives a
// HiFi-GAN vocoder, both executed through onnxruntime. Models load
// lazily on first use and stay cached per voice and per vocoder
// quality.
package glowspeak

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/dgnsrekt/voxgate/tts"
	"github.com/dgnsrekt/voxgate/tts/wave"
)

// glowSpeakCatalog lists the published glow-speak voices. A voice is
// only offered when its model directory exists under the models dir.
var glowSpeakCatalog = []tts.Voice{
	{ID: "de_thorsten", Name: "thorsten", Gender: "M", Language: "de", Locale: "de-de"},
	{ID: "el_rapunzelina", Name: "rapunzelina", Gender: "F", Language: "el", Locale: "el-gr"},
	{ID: "en-us_ljspeech", Name: "ljspeech", Gender: "F", Language: "en", Locale: "en-us"},
	{ID: "en-us_mary_ann", Name: "mary_ann", Gender: "F", Language: "en", Locale: "en-us"},
	{ID: "es_tux", Name: "tux", Gender: "M", Language: "es", Locale: "es-es"},
	{ID: "fi_harri_tapani_ylilammi", Name: "harri_tapani_ylilammi", Gender: "M", Language: "fi", Locale: "fi-fi"},
	{ID: "fr_siwis", Name: "siwis", Gender: "F", Language: "fr", Locale: "fr-fr"},
	{ID: "hu_diana_majlinger", Name: "diana_majlinger", Gender: "F", Language: "hu", Locale: "hu-hu"},
	{ID: "it_riccardo_fasol", Name: "riccardo_fasol", Gender: "M", Language: "it", Locale: "it-it"},
	{ID: "ko_kss", Name: "kss", Gender: "F", Language: "ko", Locale: "ko-ko"},
	{ID: "nl_rdh", Name: "rdh", Gender: "M", Language: "nl", Locale: "nl"},
	{ID: "ru_nikolaev", Name: "nikolaev", Gender: "M", Language: "ru", Locale: "ru-ru"},
	{ID: "sv_talesyntese", Name: "talesyntese", Gender: "M", Language: "sv", Locale: "sv-se"},
	{ID: "sw_biblia_takatifu", Name: "biblia_takatifu", Gender: "M", Language: "sw", Locale: "sw"},
	{ID: "cmn_jing_li", Name: "cmn_jing_li", Gender: "F", Language: "zh", Locale: "zh-cmn"},
}

// vocoderNames maps a quality level to its model directory name.
var vocoderNames = map[string]string{
	"high":   "hifi-gan_high",
	"medium": "hifi-gan_medium",
	"low":    "hifi-gan_low",
}

// voiceLanguage extracts the espeak voice from a model id, e.g.
// "en-us_mary_ann" phonemizes with "en".
var voiceLanguage = regexp.MustCompile(`^[^-_]+`)

// Engine implements tts.Engine over on-disk glow-speak models.
type Engine struct {
	modelsDir string
	logger    *log.Logger

	mu       sync.Mutex
	acoustic map[string]*acousticModel
	vocoders map[string]*vocoderModel
	loads    singleflight.Group
}

// New checks that the models directory exists; individual models load
// on demand.
func New(modelsDir string, logger *log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.Default()
	}
	if info, err := os.Stat(modelsDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: glow-speak models dir %s", tts.ErrEngineUnavailable, modelsDir)
	}
	return &Engine{
		modelsDir: modelsDir,
		logger:    logger.With("engine", "glow-speak"),
		acoustic:  make(map[string]*acousticModel),
		vocoders:  make(map[string]*vocoderModel),
	}, nil
}

// Name implements tts.Engine.
func (e *Engine) Name() string { return "glow-speak" }

// Voices returns the catalog entries whose models are installed,
// re-checking the disk on every call.
func (e *Engine) Voices(context.Context) ([]tts.Voice, error) {
	var out []tts.Voice
	for _, voice := range glowSpeakCatalog {
		if _, err := os.Stat(filepath.Join(e.modelsDir, voice.ID, "generator.onnx")); err == nil {
			out = append(out, voice)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Say runs the full pipeline: text to phoneme ids, ids to mels, mels to
// audio, audio to WAV.
func (e *Engine) Say(ctx context.Context, text, voiceID string, opts tts.SynthesisOptions) ([]byte, error) {
	acoustic, err := e.acousticFor(voiceID)
	if err != nil {
		return nil, err
	}
	vocoder, err := e.vocoderFor(opts.Quality)
	if err != nil {
		return nil, err
	}

	words, err := acoustic.phonemizer.Phonemize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tts.ErrSynthesisFailed, err)
	}
	ids := phonemesToIDs(words, acoustic.phonemeIDs, acoustic.phonemeMap)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no phonemes for %q", tts.ErrSynthesisFailed, text)
	}

	noiseScale := opts.NoiseScale
	if noiseScale <= 0 {
		noiseScale = 0.667
	}
	lengthScale := opts.LengthScale
	if lengthScale <= 0 {
		lengthScale = 1.0
	}

	mels, numMels, frames, err := acoustic.infer(ids, noiseScale, lengthScale)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tts.ErrSynthesisFailed, err)
	}
	prepareMels(mels)

	audio, err := vocoder.infer(mels, numMels, frames)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tts.ErrSynthesisFailed, err)
	}

	if opts.DenoiserStrength > 0 {
		audio = denoise(audio, vocoder.denoiserBias(), opts.DenoiserStrength)
	}

	samples := floatToInt16(audio)
	return wave.FromInt16(samples, vocoder.sampleRate).Encode(), nil
}

// Shutdown releases every loaded ONNX session.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, model := range e.acoustic {
		model.close()
		delete(e.acoustic, id)
	}
	for name, model := range e.vocoders {
		model.close()
		delete(e.vocoders, name)
	}
	return nil
}

// acousticFor returns the cached acoustic model for a voice, loading it
// under singleflight so concurrent first requests load once.
func (e *Engine) acousticFor(voiceID string) (*acousticModel, error) {
	e.mu.Lock()
	model, ok := e.acoustic[voiceID]
	e.mu.Unlock()
	if ok {
		return model, nil
	}

	known := false
	for _, voice := range glowSpeakCatalog {
		if voice.ID == voiceID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: glow-speak voice %s", tts.ErrVoiceNotFound, voiceID)
	}

	result, err, _ := e.loads.Do("voice:"+voiceID, func() (interface{}, error) {
		dir := filepath.Join(e.modelsDir, voiceID)
		e.logger.Debug("loading acoustic model", "dir", dir)

		loaded, err := loadAcousticModel(dir, voiceLanguage.FindString(voiceID))
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.acoustic[voiceID] = loaded
		e.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*acousticModel), nil
}

// vocoderFor returns the cached vocoder for a quality level, defaulting
// to high for unknown values.
func (e *Engine) vocoderFor(quality string) (*vocoderModel, error) {
	name, ok := vocoderNames[quality]
	if !ok {
		name = vocoderNames["high"]
	}

	e.mu.Lock()
	model, cached := e.vocoders[name]
	e.mu.Unlock()
	if cached {
		return model, nil
	}

	result, err, _ := e.loads.Do("vocoder:"+name, func() (interface{}, error) {
		dir := filepath.Join(e.modelsDir, name)
		e.logger.Debug("loading vocoder model", "dir", dir)

		loaded, err := loadVocoderModel(dir)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.vocoders[name] = loaded
		e.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*vocoderModel), nil
}
