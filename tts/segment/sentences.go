package segment

import (
	"strings"
	"unicode"
)

// Common abbreviations whose trailing period does not end a sentence.
var abbreviations = func() map[string]bool {
	words := []string{
		"mr", "mrs", "ms", "dr", "prof", "sr", "jr",
		"i.e", "e.g", "etc", "vs", "cf", "al",
		"inc", "ltd", "co", "corp",
		"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
		"st", "rd", "ave", "blvd",
		"u.s", "u.k", "u.n", "e.u",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
		m[w+"."] = true
	}
	return m
}()

// splitSentences breaks free text on sentence-ending punctuation,
// skipping abbreviations, decimal numbers and ellipses.
func splitSentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var sentences []string
	last := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + 1
		for end < len(runes) && (runes[end] == '.' || runes[end] == '!' || runes[end] == '?') {
			end++
		}
		for end < len(runes) && (runes[end] == '"' || runes[end] == '\'' || runes[end] == ')' || runes[end] == ']') {
			end++
		}
		if !isSentenceEnd(runes, i) {
			i = end - 1
			continue
		}
		s := strings.TrimSpace(string(runes[last:end]))
		if s != "" {
			sentences = append(sentences, s)
		}
		for end < len(runes) && unicode.IsSpace(runes[end]) {
			end++
		}
		last = end
		i = end - 1
	}
	if last < len(runes) {
		if s := strings.TrimSpace(string(runes[last:])); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func isSentenceEnd(runes []rune, pos int) bool {
	punct := runes[pos]

	if punct == '.' {
		// Word before the period.
		start := pos - 1
		for start >= 0 && !unicode.IsSpace(runes[start]) {
			start--
		}
		word := strings.ToLower(string(runes[start+1 : pos+1]))
		if abbreviations[word] || abbreviations[strings.TrimSuffix(word, ".")] {
			return false
		}
		if strings.Count(word, ".") > 1 {
			return false
		}
		// Decimal number.
		if pos > 0 && pos+1 < len(runes) && unicode.IsDigit(runes[pos-1]) && unicode.IsDigit(runes[pos+1]) {
			return false
		}
		// Ellipsis.
		if pos+2 < len(runes) && runes[pos+1] == '.' && runes[pos+2] == '.' {
			return false
		}
	}

	next := pos + 1
	for next < len(runes) && (runes[next] == '"' || runes[next] == '\'' || runes[next] == ')' || runes[next] == ']' ||
		runes[next] == '!' || runes[next] == '?' || runes[next] == '.') {
		next++
	}
	if next >= len(runes) {
		return true
	}
	if !unicode.IsSpace(runes[next]) {
		return false
	}
	if punct == '!' || punct == '?' {
		return true
	}
	for next < len(runes) && unicode.IsSpace(runes[next]) {
		next++
	}
	return next >= len(runes) || unicode.IsUpper(runes[next]) || unicode.IsDigit(runes[next])
}
