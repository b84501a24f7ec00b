package mary

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSpeakProtocol(t *testing.T) {
	payload := []byte("RIFFfake-wav-payload")

	var stdin bytes.Buffer
	reply := fmt.Sprintf("%d\n%s", len(payload), payload)
	stdout := bufio.NewReader(strings.NewReader(reply))

	wav, err := speak(&stdin, stdout, "  hello world  ")
	if err != nil {
		t.Fatalf("speak: %v", err)
	}
	if !bytes.Equal(wav, payload) {
		t.Errorf("payload mismatch: got %q", wav)
	}
	if got := stdin.String(); got != "hello world\n" {
		t.Errorf("sent %q, want trimmed text plus newline", got)
	}
}

func TestSpeakShortRead(t *testing.T) {
	stdout := bufio.NewReader(strings.NewReader("100\nonly-a-few-bytes"))
	if _, err := speak(&bytes.Buffer{}, stdout, "hi"); err == nil {
		t.Fatal("expected error on truncated payload")
	}
}

func TestSpeakBadSizeLine(t *testing.T) {
	for _, reply := range []string{"not-a-number\n", "-5\n"} {
		stdout := bufio.NewReader(strings.NewReader(reply))
		if _, err := speak(&bytes.Buffer{}, stdout, "hi"); err == nil {
			t.Errorf("reply %q: expected error", reply)
		}
	}
}

func TestParseVoiceConfig(t *testing.T) {
	config := `# MaryTTS voice configuration
name = cmu-slt-hsmm
locale = en_US

voice.cmu-slt-hsmm.gender = female
other.key = ignored
`
	voice, ok := parseVoiceConfig(strings.NewReader(config))
	if !ok {
		t.Fatal("expected a usable voice")
	}
	if voice.ID != "cmu-slt-hsmm" || voice.Gender != "female" {
		t.Errorf("unexpected voice: %+v", voice)
	}
	if voice.Language != "en" || voice.Locale != "en_us" {
		t.Errorf("locale parse: lang=%q locale=%q", voice.Language, voice.Locale)
	}
}

func TestParseVoiceConfigIncomplete(t *testing.T) {
	if _, ok := parseVoiceConfig(strings.NewReader("name = partial\n")); ok {
		t.Error("voice without locale should be rejected")
	}
}

func TestReadVoiceJar(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "voice-istc-lucia-hsmm-5.2.jar")
	writeVoiceJar(t, jarPath, "name = istc-lucia-hsmm\nlocale = it\nvoice.istc-lucia-hsmm.gender = female\n")

	voice, ok := readVoiceJar(jarPath)
	if !ok {
		t.Fatal("expected voice from jar")
	}
	if voice.ID != "istc-lucia-hsmm" || voice.Language != "it" {
		t.Errorf("unexpected voice: %+v", voice)
	}
}

func writeVoiceJar(t *testing.T, path, config string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("marytts/voice/Lucia/voice.config")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(config)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}
