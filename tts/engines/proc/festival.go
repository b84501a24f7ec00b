package proc

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/dgnsrekt/voxgate/tts"
)

// festivalCatalog lists the voices festival installations commonly
// ship; the live `(voice.list)` probe narrows it to what is installed.
var festivalCatalog = []tts.Voice{
	{ID: "us1_mbrola", Name: "us1_mbrola", Gender: "F", Locale: "en-us", Language: "en"},
	{ID: "us2_mbrola", Name: "us2_mbrola", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "us3_mbrola", Name: "us3_mbrola", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "rab_diphone", Name: "rab_diphone", Gender: "M", Locale: "en-gb", Language: "en"},
	{ID: "en1_mbrola", Name: "en1_mbrola", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "ked_diphone", Name: "ked_diphone", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "kal_diphone", Name: "kal_diphone", Gender: "M", Locale: "en-us", Language: "en"},
	{ID: "cmu_us_slt_arctic_hts", Name: "cmu_us_slt_arctic_hts", Gender: "F", Locale: "en-us", Language: "en"},
	{ID: "msu_ru_nsh_clunits", Name: "msu_ru_nsh_clunits", Gender: "M", Locale: "ru-ru", Language: "ru"},
	{ID: "el_diphone", Name: "el_diphone", Gender: "M", Locale: "es-es", Language: "es"},
	{ID: "upc_ca_ona_hts", Name: "upc_ca_ona_hts", Gender: "F", Locale: "ca-es", Language: "ca"},
	{ID: "czech_dita", Name: "czech_dita", Gender: "F", Locale: "cs-cz", Language: "cs"},
	{ID: "czech_machac", Name: "czech_machac", Gender: "M", Locale: "cs-cz", Language: "cs"},
	{ID: "czech_ph", Name: "czech_ph", Gender: "M", Locale: "cs-cz", Language: "cs"},
	{ID: "czech_krb", Name: "czech_krb", Gender: "F", Locale: "cs-cz", Language: "cs"},
	{ID: "suo_fi_lj_diphone", Name: "suo_fi_lj_diphone", Gender: "F", Locale: "fi-fi", Language: "fi"},
	{ID: "hy_fi_mv_diphone", Name: "hy_fi_mv_diphone", Gender: "M", Locale: "fi-fi", Language: "fi"},
	{ID: "telugu_NSK_diphone", Name: "telugu_NSK_diphone", Gender: "M", Locale: "te-in", Language: "te"},
	{ID: "marathi_NSK_diphone", Name: "marathi_NSK_diphone", Gender: "M", Locale: "mr-in", Language: "mr"},
	{ID: "hindi_NSK_diphone", Name: "hindi_NSK_diphone", Gender: "M", Locale: "hi-in", Language: "hi"},
	{ID: "lp_diphone", Name: "lp_diphone", Gender: "F", Locale: "it-it", Language: "it"},
	{ID: "pc_diphone", Name: "pc_diphone", Gender: "M", Locale: "it-it", Language: "it"},
	{ID: "ara_norm_ziad_hts", Name: "ara_norm_ziad_hts", Gender: "M", Locale: "ar", Language: "ar"},
}

// festivalEncodings maps languages to the single-byte text encodings
// festival's voices expect on stdin.
var festivalEncodings = map[string]encoding.Encoding{
	"en": charmap.ISO8859_1,
	"ru": charmap.ISO8859_1,
	"es": charmap.ISO8859_15,
	"ca": charmap.ISO8859_15,
	"cs": charmap.ISO8859_2,
	"fi": charmap.ISO8859_15,
	// Arabic voices consume UTF-8 directly.
}

// Festival wraps festival's text2wave tool.
type Festival struct {
	byID map[string]tts.Voice
	run  runner
}

// NewFestival probes for the text2wave binary.
func NewFestival(timeout time.Duration, logger *log.Logger) (*Festival, error) {
	if logger == nil {
		logger = log.Default()
	}
	if !which("text2wave") {
		return nil, fmt.Errorf("%w: text2wave", tts.ErrEngineUnavailable)
	}
	byID := make(map[string]tts.Voice, len(festivalCatalog))
	for _, v := range festivalCatalog {
		byID[v.ID] = v
	}
	return &Festival{
		byID: byID,
		run:  runner{timeout: timeout, logger: logger.With("engine", "festival")},
	}, nil
}

// Name implements tts.Engine.
func (f *Festival) Name() string { return "festival" }

// Voices narrows the catalog to what `(voice.list)` reports installed.
// When the probe fails the full catalog is returned.
func (f *Festival) Voices(ctx context.Context) ([]tts.Voice, error) {
	installed := f.installedVoices(ctx)
	var voices []tts.Voice
	for _, v := range festivalCatalog {
		if len(installed) == 0 || installed[v.ID] {
			voices = append(voices, v)
		}
	}
	return voices, nil
}

func (f *Festival) installedVoices(ctx context.Context) map[string]bool {
	if !which("festival") {
		return nil
	}
	out, err := f.run.run(ctx, "festival", nil, []byte("(print (voice.list))"))
	if err != nil {
		f.run.logger.Warn("voice.list probe failed", "err", err)
		return nil
	}
	// Output form: (voice1 voice2 ...)
	s := strings.TrimSpace(string(out))
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	installed := make(map[string]bool)
	for _, name := range strings.Fields(s) {
		installed[name] = true
	}
	return installed
}

// Say synthesizes via text2wave, selecting the voice with an eval
// expression and encoding stdin per the voice's language.
func (f *Festival) Say(ctx context.Context, text, voiceID string, _ tts.SynthesisOptions) ([]byte, error) {
	input := []byte(text)
	if v, ok := f.byID[voiceID]; ok {
		if enc, ok := festivalEncodings[v.Language]; ok {
			encoded, err := enc.NewEncoder().Bytes(input)
			if err == nil {
				input = encoded
			}
		}
	}

	tmp, err := os.CreateTemp("", "voxgate-festival-*.wav")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	args := []string{"-o", tmpPath, "-eval", fmt.Sprintf("(voice_%s)", voiceID)}
	if err := f.run.exec(ctx, "text2wave", args, input); err != nil {
		return nil, err
	}
	return os.ReadFile(tmpPath)
}

// Shutdown implements tts.Engine.
func (f *Festival) Shutdown() error { return nil }
