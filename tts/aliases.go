package tts

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultAliases maps language/locale shorthand to ordered candidate
// voices. The first candidate whose engine is registered wins.
func defaultAliases() map[string][]string {
	return map[string][]string{
		"en":    {"glow-speak:en-us_mary_ann", "nanotts:en-GB"},
		"en-gb": {"larynx:ek-glow_tts", "nanotts:en-GB"},

		"de": {"glow-speak:de_thorsten", "nanotts:de-DE"},
		"es": {"glow-speak:es_tux", "nanotts:es-ES"},
		"fr": {"glow-speak:fr_siwis", "nanotts:fr-FR"},
		"it": {"glow-speak:it_riccardo_fasol", "nanotts:it-IT"},

		"el": {"glow-speak:el_rapunzelina"},
		"fi": {"glow-speak:fi_harri_tapani_ylilammi"},
		"hu": {"glow-speak:hu_diana_majlinger"},
		"ko": {"glow-speak:ko_kss"},
		"nl": {"glow-speak:nl_rdh"},
		"ru": {"glow-speak:ru_nikolaev"},
		"sv": {"glow-speak:sv_talesyntese"},
		"sw": {"glow-speak:sw_biblia_takatifu"},

		"ar": {"festival:ara_norm_ziad_hts"},
		"bn": {"flite:cmu_indic_ben_rm"},
		"ca": {"festival:upc_ca_ona_hts"},
		"cs": {"festival:czech_dita"},
		"gu": {"flite:cmu_indic_guj_ad"},
		"hi": {"flite:cmu_indic_hin_ab"},
		"kn": {"flite:cmu_indic_kan_plv"},
		"mr": {"flite:cmu_indic_mar_aup"},
		"pa": {"flite:cmu_indic_pan_amp"},
		"ta": {"flite:cmu_indic_tam_sdr"},
		"te": {"marytts:cmu-nk-hsmm"},
		"tr": {"marytts:dfki-ot-hsmm"},

		// Served by a remote engine registered under "coqui-tts" when
		// one is configured; otherwise these fall through to espeak.
		"ja": {"coqui-tts:ja_kokoro"},
		"zh": {"coqui-tts:zh_baker"},
	}
}

// LoadAliasFile reads user alias overrides from a YAML file mapping
// language codes to candidate voice lists.
func LoadAliasFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read alias file: %w", err)
	}
	aliases := make(map[string][]string)
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("unable to parse alias file: %w", err)
	}
	normalized := make(map[string][]string, len(aliases))
	for key, candidates := range aliases {
		normalized[strings.ToLower(key)] = candidates
	}
	return normalized, nil
}
