package glowspeak

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// phonemizer turns text into IPA phonemes with espeak-ng. espeak drops
// clause-breaking punctuation from its output, so the text is split
// into clauses first and each breaker is re-attached as its own word.

var clauseBreak = regexp.MustCompile(`([.,;:!?])`)

type phonemizer struct {
	binary string
	voice  string
}

// newPhonemizer probes for espeak-ng and binds it to a language voice.
func newPhonemizer(voice string) (*phonemizer, error) {
	for _, binary := range []string{"espeak-ng", "espeak"} {
		if path, err := exec.LookPath(binary); err == nil {
			return &phonemizer{binary: path, voice: voice}, nil
		}
	}
	return nil, fmt.Errorf("espeak-ng not found on PATH")
}

// Phonemize returns the word phoneme lists for text, with a guaranteed
// sentence-final full stop.
func (p *phonemizer) Phonemize(ctx context.Context, text string) ([][]string, error) {
	var words [][]string

	clauses, breakers := splitClauses(text)
	for i, clause := range clauses {
		if clause != "" {
			clauseWords, err := p.phonemizeClause(ctx, clause)
			if err != nil {
				return nil, err
			}
			words = append(words, clauseWords...)
		}
		if i < len(breakers) {
			words = append(words, []string{breakers[i]})
		}
	}

	// The models expect a terminating long pause.
	if len(words) == 0 || !isClauseBreaker(words[len(words)-1]) {
		words = append(words, []string{"."})
	}
	return words, nil
}

// phonemizeClause runs espeak-ng with underscore-separated phoneme
// output ("--ipa=3") and splits the result into words.
func (p *phonemizer) phonemizeClause(ctx context.Context, clause string) ([][]string, error) {
	cmd := exec.CommandContext(ctx, p.binary, "-q", "--ipa=3", "-v", p.voice, "--", clause)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("espeak-ng: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	// NFKD decomposition splits combined IPA glyphs into the base
	// symbols the phoneme tables use.
	ipa := norm.NFKD.String(stdout.String())
	ipa = strings.ReplaceAll(ipa, "‍", "")

	var words [][]string
	for _, word := range strings.Fields(ipa) {
		var phonemes []string
		for _, phoneme := range strings.Split(word, "_") {
			if phoneme != "" {
				phonemes = append(phonemes, phoneme)
			}
		}
		if len(phonemes) > 0 {
			words = append(words, phonemes)
		}
	}
	return words, nil
}

// splitClauses cuts text at clause-breaking punctuation, returning the
// clause texts and the breakers between them.
func splitClauses(text string) (clauses, breakers []string) {
	last := 0
	for _, loc := range clauseBreak.FindAllStringIndex(text, -1) {
		clauses = append(clauses, strings.TrimSpace(text[last:loc[0]]))
		breakers = append(breakers, text[loc[0]:loc[1]])
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		clauses = append(clauses, rest)
	}
	return clauses, breakers
}

func isClauseBreaker(word []string) bool {
	if len(word) != 1 {
		return false
	}
	switch word[0] {
	case ".", ",", ";", ":", "!", "?":
		return true
	}
	return false
}
