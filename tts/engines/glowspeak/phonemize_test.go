package glowspeak

import (
	"reflect"
	"testing"
)

func TestSplitClauses(t *testing.T) {
	tests := []struct {
		text     string
		clauses  []string
		breakers []string
	}{
		{
			text:     "Hello, world.",
			clauses:  []string{"Hello", "world"},
			breakers: []string{",", "."},
		},
		{
			text:     "No punctuation here",
			clauses:  []string{"No punctuation here"},
			breakers: nil,
		},
		{
			text:     "One. Two! Three?",
			clauses:  []string{"One", "Two", "Three"},
			breakers: []string{".", "!", "?"},
		},
		{
			text:     "Trailing words, then more",
			clauses:  []string{"Trailing words", "then more"},
			breakers: []string{","},
		},
	}

	for _, tt := range tests {
		clauses, breakers := splitClauses(tt.text)
		if !reflect.DeepEqual(clauses, tt.clauses) {
			t.Errorf("%q clauses = %v, want %v", tt.text, clauses, tt.clauses)
		}
		if !reflect.DeepEqual(breakers, tt.breakers) {
			t.Errorf("%q breakers = %v, want %v", tt.text, breakers, tt.breakers)
		}
	}
}

func TestIsClauseBreaker(t *testing.T) {
	if !isClauseBreaker([]string{"."}) || !isClauseBreaker([]string{"?"}) {
		t.Error("punctuation words are breakers")
	}
	if isClauseBreaker([]string{"h", "ə"}) || isClauseBreaker([]string{"ə"}) {
		t.Error("phoneme words are not breakers")
	}
}

func TestVoiceLanguage(t *testing.T) {
	tests := map[string]string{
		"en-us_mary_ann":           "en",
		"de_thorsten":              "de",
		"cmn_jing_li":              "cmn",
		"fi_harri_tapani_ylilammi": "fi",
	}
	for id, want := range tests {
		if got := voiceLanguage.FindString(id); got != want {
			t.Errorf("voiceLanguage(%s) = %s, want %s", id, got, want)
		}
	}
}
