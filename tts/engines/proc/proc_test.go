package proc

import "testing"

func TestParseEspeakVoices(t *testing.T) {
	out := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-us           --/M      English_(America)  gmw/en-US            (en 2)
 5  cmn             --/M      Chinese_(Mandarin) sit/cmn              (zh-cmn 5)(zh 5)
 5  yue             --/F      Chinese_(Cantonese) sit/yue
`
	voices := parseEspeakVoices(out)
	if len(voices) != 4 {
		t.Fatalf("got %d voices, want 4", len(voices))
	}

	af := voices[0]
	if af.ID != "af" || af.Language != "af" || af.Gender != "M" {
		t.Errorf("unexpected first voice: %+v", af)
	}

	enUS := voices[1]
	if enUS.Locale != "en-us" || enUS.Language != "en" {
		t.Errorf("locale split broken: %+v", enUS)
	}
	if enUS.Name != "English_(America)" {
		t.Errorf("name = %q", enUS.Name)
	}

	cmn := voices[2]
	if cmn.Locale != "zh-cmn" || cmn.Language != "zh" {
		t.Errorf("cmn remap broken: %+v", cmn)
	}
	yue := voices[3]
	if yue.Locale != "zh-yue" || yue.Language != "zh" || yue.Gender != "F" {
		t.Errorf("yue remap broken: %+v", yue)
	}

	// ID stays the raw espeak identifier even when the locale is remapped.
	if cmn.ID != "cmn" {
		t.Errorf("cmn id = %q, want raw id", cmn.ID)
	}
}

func TestParseEspeakVoicesEmpty(t *testing.T) {
	if voices := parseEspeakVoices("Pty Language Age/Gender VoiceName File\n"); len(voices) != 0 {
		t.Errorf("header-only output yielded %d voices", len(voices))
	}
}

func TestFestivalEncodings(t *testing.T) {
	// Czech text must round-trip through ISO 8859-2.
	enc := festivalEncodings["cs"]
	if enc == nil {
		t.Fatal("missing cs encoding")
	}
	encoded, err := enc.NewEncoder().Bytes([]byte("příliš"))
	if err != nil {
		t.Fatalf("encoding failed: %v", err)
	}
	if len(encoded) >= len("příliš") {
		t.Error("single-byte encoding should be shorter than UTF-8")
	}
}

func TestWhichMissingBinary(t *testing.T) {
	if which("voxgate-definitely-not-a-binary") {
		t.Error("which() found a nonexistent binary")
	}
}
