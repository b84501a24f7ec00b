package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgnsrekt/voxgate/tts"
)

func newTestEngine(t *testing.T, handler http.Handler) (*Engine, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	engine, err := New(Config{URL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return engine, srv
}

func TestSayForwardsParameters(t *testing.T) {
	wav := []byte("RIFFwav-bytes")
	var gotQuery map[string]string

	engine, _ := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Write(wav)
	}))

	opts := tts.SynthesisOptions{
		Quality:          "low",
		DenoiserStrength: 0.01,
		NoiseScale:       0.5,
		LengthScale:      1.2,
		SpeakerID:        "3",
	}
	out, err := engine.Say(context.Background(), "hello there", "en-us_mary_ann", opts)
	if err != nil {
		t.Fatalf("Say: %v", err)
	}
	if !bytes.Equal(out, wav) {
		t.Errorf("body mismatch: %q", out)
	}

	want := map[string]string{
		"text":             "hello there",
		"voice":            "en-us_mary_ann",
		"vocoder":          "low",
		"denoiserStrength": "0.01",
		"noiseScale":       "0.5",
		"lengthScale":      "1.2",
		"speakerId":        "3",
		"ssml":             "false",
		"cache":            "false",
	}
	for key, value := range want {
		if gotQuery[key] != value {
			t.Errorf("query %s = %q, want %q", key, gotQuery[key], value)
		}
	}
}

func TestSayServerError(t *testing.T) {
	engine, _ := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such voice", http.StatusBadRequest)
	}))

	_, err := engine.Say(context.Background(), "hi", "nope", tts.SynthesisOptions{})
	if !errors.Is(err, tts.ErrSynthesisFailed) {
		t.Fatalf("want ErrSynthesisFailed, got %v", err)
	}
}

func TestVoicesCatalogCached(t *testing.T) {
	fetches := 0
	engine, _ := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/voices" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fetches++
		json.NewEncoder(w).Encode(map[string]tts.Voice{
			"larynx:harvard-glow_tts": {
				ID: "harvard-glow_tts", Name: "harvard-glow_tts",
				Gender: "F", Language: "en", Locale: "en-us",
			},
			"larynx:blizzard_fls-glow_tts": {
				ID: "blizzard_fls-glow_tts", Name: "blizzard_fls-glow_tts",
				Gender: "F", Language: "en", Locale: "en-us",
			},
		})
	}))

	for i := 0; i < 3; i++ {
		voices, err := engine.Voices(context.Background())
		if err != nil {
			t.Fatalf("Voices: %v", err)
		}
		if len(voices) != 2 {
			t.Fatalf("got %d voices, want 2", len(voices))
		}
		if voices[0].ID != "blizzard_fls-glow_tts" {
			t.Errorf("catalog not sorted: first voice %s", voices[0].ID)
		}
	}
	if fetches != 1 {
		t.Errorf("catalog fetched %d times, want 1", fetches)
	}
}

func TestVoicesDegradesOnFailure(t *testing.T) {
	engine, srv := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	_ = srv

	voices, err := engine.Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices should degrade, not fail: %v", err)
	}
	if len(voices) != 0 {
		t.Errorf("expected empty catalog, got %d", len(voices))
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(Config{URL: "not-a-url"}, nil); !errors.Is(err, tts.ErrInvalidConfig) {
		t.Fatalf("want ErrInvalidConfig, got %v", err)
	}
}
