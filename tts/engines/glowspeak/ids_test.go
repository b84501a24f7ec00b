package glowspeak

import (
	"reflect"
	"strings"
	"testing"
)

const phonemesFixture = `# test phoneme table
0 _
1 ^
2 $
3 #
4 .
5 ,
6 h
7 ə
8 l
9 oʊ
10 ˈ
11 w
12 ɜ
`

func testTable(t *testing.T) map[string]int64 {
	t.Helper()
	table, err := loadPhonemeIDs(strings.NewReader(phonemesFixture))
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestLoadPhonemeIDs(t *testing.T) {
	table := testTable(t)
	if len(table) != 13 {
		t.Fatalf("got %d entries, want 13", len(table))
	}
	if table["oʊ"] != 9 {
		t.Errorf("diphthong id = %d, want 9", table["oʊ"])
	}
	if table["^"] != 1 || table["$"] != 2 {
		t.Error("bos/eos ids wrong")
	}
}

func TestLoadPhonemeMap(t *testing.T) {
	pmap, err := loadPhonemeMap(strings.NewReader("ʌ ə\naɪ a ɪ\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(pmap["aɪ"], []string{"a", "ɪ"}) {
		t.Errorf("multi-target map: %v", pmap["aɪ"])
	}
}

func TestPhonemesToIDs(t *testing.T) {
	table := testTable(t)

	// "hello ." with a stress mark fused onto the first phoneme.
	words := [][]string{
		{"ˈh", "ə", "l", "oʊ"},
		{"."},
	}
	ids := phonemesToIDs(words, table, nil)

	// bos, stress, h, ə, l, oʊ, blank, period, eos
	want := []int64{1, 10, 6, 7, 8, 9, 3, 4, 2}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestPhonemesToIDsSimplePunctuation(t *testing.T) {
	table := testTable(t)

	ids := phonemesToIDs([][]string{{"h"}, {"?"}}, table, nil)
	// "?" folds to "." (id 4).
	want := []int64{1, 6, 3, 4, 2}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestPhonemesToIDsPhonemeMap(t *testing.T) {
	table := testTable(t)
	pmap := map[string][]string{"ɚ": {"ɜ", "ə"}}

	ids := phonemesToIDs([][]string{{"ɚ"}}, table, pmap)
	want := []int64{1, 12, 7, 2}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestPhonemesToIDsUnknownSplitsToRunes(t *testing.T) {
	table := testTable(t)

	// "hl" is not in the table; its runes are.
	ids := phonemesToIDs([][]string{{"hl"}}, table, nil)
	want := []int64{1, 6, 8, 2}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestSeparateTokens(t *testing.T) {
	got := separateTokens([]string{"ˈhə", "l"})
	want := []string{"ˈ", "hə", "l"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("separateTokens = %v, want %v", got, want)
	}
}
