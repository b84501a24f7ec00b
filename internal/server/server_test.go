package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dgnsrekt/voxgate/tts"
	"github.com/dgnsrekt/voxgate/tts/engines/mock"
	"github.com/dgnsrekt/voxgate/tts/wave"
)

func newTestServer(t *testing.T) (*Server, *mock.Engine) {
	t.Helper()
	engine := mock.New("test", 8000)
	registry := tts.NewRegistry(nil)
	registry.Register(engine)
	resolver := tts.NewResolver(registry, nil)
	resolver.SetAliases(map[string][]string{"en": {"test:A"}})
	synth := tts.NewSynthesizer(registry, resolver, nil, nil)
	return New(Config{}, synth, tts.DefaultOptions(), "test-version", nil), engine
}

func TestTTSReturnsWAV(t *testing.T) {
	srv, engine := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tts?voice=test:A&text=hello", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("content type = %q", ct)
	}
	if _, err := wave.Decode(rec.Body.Bytes()); err != nil {
		t.Errorf("body is not a WAV: %v", err)
	}
	if engine.CallCount() != 1 {
		t.Errorf("engine called %d times, want 1", engine.CallCount())
	}
}

func TestTTSPostBodyIsText(t *testing.T) {
	srv, engine := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tts?voice=test:A", strings.NewReader("from the body"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	calls := engine.Calls()
	if len(calls) != 1 || calls[0].Text != "from the body" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestTTSForwardsOptions(t *testing.T) {
	srv, engine := newTestServer(t)

	target := "/api/tts?" + url.Values{
		"voice":            {"test:A"},
		"text":             {"hi"},
		"vocoder":          {"low"},
		"denoiserStrength": {"0.01"},
		"noiseScale":       {"0.5"},
		"lengthScale":      {"1.5"},
		"speakerId":        {"3"},
	}.Encode()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	calls := engine.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	opts := calls[0].Options
	if opts.Quality != "low" {
		t.Errorf("quality = %q", opts.Quality)
	}
	if opts.DenoiserStrength != 0.01 || opts.NoiseScale != 0.5 || opts.LengthScale != 1.5 {
		t.Errorf("scales = %v %v %v", opts.DenoiserStrength, opts.NoiseScale, opts.LengthScale)
	}
	if opts.SpeakerID != "3" {
		t.Errorf("speaker = %q", opts.SpeakerID)
	}
}

func TestTTSMissingParams(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, target := range []string{
		"/api/tts?text=hello",   // no voice
		"/api/tts?voice=test:A", // no text
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestTTSBadFloatParam(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tts?voice=test:A&text=hi&noiseScale=loud", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTTSUnresolvableVoice(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tts?voice=ghost:nobody&text=hi", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestVoicesFilters(t *testing.T) {
	srv, engine := newTestServer(t)
	engine.SetVoices([]tts.Voice{
		{ID: "A", Name: "Mock A", Language: "en", Locale: "en-US", Gender: "F"},
		{ID: "B", Name: "Mock B", Language: "de", Locale: "de-DE", Gender: "M"},
	})

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"all", "/api/voices", []string{"test:A", "test:B"}},
		{"language", "/api/voices?language=de", []string{"test:B"}},
		{"gender", "/api/voices?gender=F", []string{"test:A"}},
		{"locale", "/api/voices?locale=en-US", []string{"test:A"}},
		{"engine", "/api/voices?tts_name=test", []string{"test:A", "test:B"}},
		{"engine miss", "/api/voices?tts_name=ghost", nil},
		{"multi value", "/api/voices?language=en&language=de", []string{"test:A", "test:B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}

			var voices map[string]voiceRecord
			if err := json.Unmarshal(rec.Body.Bytes(), &voices); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(voices) != len(tt.want) {
				t.Fatalf("got %d voices, want %d: %v", len(voices), len(tt.want), voices)
			}
			for _, id := range tt.want {
				record, ok := voices[id]
				if !ok {
					t.Errorf("missing voice %q", id)
					continue
				}
				if record.TTSName != "test" {
					t.Errorf("%s: tts_name = %q", id, record.TTSName)
				}
			}
		})
	}
}

func TestLanguages(t *testing.T) {
	srv, engine := newTestServer(t)
	engine.SetVoices([]tts.Voice{
		{ID: "A", Language: "en", Locale: "en-US"},
		{ID: "B", Language: "de", Locale: "de-DE"},
		{ID: "C", Language: "en", Locale: "en-GB"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/languages", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var languages []string
	if err := json.Unmarshal(rec.Body.Bytes(), &languages); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(languages) != 2 {
		t.Errorf("languages = %v, want en and de once each", languages)
	}
}

func TestProcessCompat(t *testing.T) {
	srv, engine := newTestServer(t)

	target := "/process?" + url.Values{
		"INPUT_TEXT": {"hello"},
		"VOICE":      {"test:A;low"},
	}.Encode()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("content type = %q", ct)
	}
	calls := engine.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].Options.Quality != "low" {
		t.Errorf("quality = %q, want low from VOICE suffix", calls[0].Options.Quality)
	}
}

func TestProcessCompatPost(t *testing.T) {
	srv, engine := newTestServer(t)

	form := url.Values{"INPUT_TEXT": {"posted text"}, "VOICE": {"test:A"}}
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(form.Encode()))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	calls := engine.Calls()
	if len(calls) != 1 || calls[0].Text != "posted text" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestMaryVoicesPlainText(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/voices", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 || lines[0] != "test:A" || lines[1] != "test:B" {
		t.Errorf("lines = %v", lines)
	}
}

func TestVersion(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "test-version" {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
}

func TestConvertBool(t *testing.T) {
	truthy := []string{"true", "TRUE", " yes ", "on", "1", "enable"}
	for _, s := range truthy {
		if !convertBool(s) {
			t.Errorf("convertBool(%q) = false", s)
		}
	}
	falsy := []string{"", "false", "0", "off", "no", "disable"}
	for _, s := range falsy {
		if convertBool(s) {
			t.Errorf("convertBool(%q) = true", s)
		}
	}
}
