package glowspeak

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Phoneme-to-id encoding. Each voice ships a phonemes.txt mapping ids
// to phoneme strings and optionally a phoneme_map.txt rewriting
// unsupported phonemes to supported sequences.

const (
	padPhoneme   = "_"
	bosPhoneme   = "^"
	eosPhoneme   = "$"
	blankPhoneme = "#"
)

// simplePunctuation folds less common clause breakers into the short
// and long pause symbols the models know.
var simplePunctuation = map[string]string{
	";": ",",
	":": ",",
	"?": ".",
	"!": ".",
}

// separatePhonemes are encoded as standalone tokens even when espeak
// attaches them to a word: primary/secondary stress and pauses.
var separatePhonemes = map[string]bool{
	"ˈ": true, // primary stress
	"ˌ": true, // secondary stress
	".": true,
	",": true,
}

// loadPhonemeIDs parses a phonemes.txt file: one "<id> <phoneme>" pair
// per line, blank lines and #-comments skipped. The phoneme text may
// itself contain spaces, so only the first field is the id.
func loadPhonemeIDs(r io.Reader) (map[string]int64, error) {
	table := make(map[string]int64)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.Trim(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idStr, phoneme, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		table[phoneme] = id
	}
	return table, scanner.Err()
}

// loadPhonemeMap parses a phoneme_map.txt file: "<from> <to...>" per
// line, where the replacement may be several phonemes.
func loadPhonemeMap(r io.Reader) (map[string][]string, error) {
	pmap := make(map[string][]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		from, to, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		pmap[from] = strings.Fields(to)
	}
	return pmap, scanner.Err()
}

// phonemesToIDs encodes word phoneme lists into model ids: bos, then
// the words with a blank token between them, then eos. Stress marks and
// punctuation are separated out first, unknown multi-rune phonemes fall
// back to their individual runes, and anything still unknown is
// dropped.
func phonemesToIDs(words [][]string, table map[string]int64, pmap map[string][]string) []int64 {
	ids := make([]int64, 0, 16)

	appendID := func(phoneme string) {
		if id, ok := table[phoneme]; ok {
			ids = append(ids, id)
			return
		}
		if len([]rune(phoneme)) > 1 {
			for _, r := range phoneme {
				if id, ok := table[string(r)]; ok {
					ids = append(ids, id)
				}
			}
		}
	}

	appendPhoneme := func(phoneme string) {
		if mapped, ok := pmap[phoneme]; ok {
			for _, m := range mapped {
				appendID(m)
			}
			return
		}
		appendID(phoneme)
	}

	blank, hasBlank := table[blankPhoneme]

	if id, ok := table[bosPhoneme]; ok {
		ids = append(ids, id)
	}
	for i, word := range words {
		if i > 0 && hasBlank {
			ids = append(ids, blank)
		}
		for _, phoneme := range separateTokens(word) {
			if simple, ok := simplePunctuation[phoneme]; ok {
				phoneme = simple
			}
			appendPhoneme(phoneme)
		}
	}
	if id, ok := table[eosPhoneme]; ok {
		ids = append(ids, id)
	}
	return ids
}

// separateTokens splits stress marks and pause punctuation out of word
// phonemes so they encode as their own tokens.
func separateTokens(word []string) []string {
	out := make([]string, 0, len(word))
	for _, phoneme := range word {
		if separatePhonemes[phoneme] || !strings.ContainsAny(phoneme, "ˈˌ") {
			out = append(out, phoneme)
			continue
		}
		rest := phoneme
		for rest != "" {
			r := []rune(rest)
			if separatePhonemes[string(r[0])] {
				out = append(out, string(r[0]))
				rest = string(r[1:])
				continue
			}
			// Collect runes up to the next stress mark.
			i := 0
			for i < len(r) && !separatePhonemes[string(r[i])] {
				i++
			}
			out = append(out, string(r[:i]))
			rest = string(r[i:])
		}
	}
	return out
}
