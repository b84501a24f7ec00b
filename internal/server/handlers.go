package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dgnsrekt/voxgate/tts"
)

// voiceRecord is the /api/voices wire shape: the voice record plus the
// engine that serves it.
type voiceRecord struct {
	tts.Voice
	TTSName string `json:"tts_name"`
}

// handleTTS answers GET/POST /api/tts with a complete WAV.
func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	voice := q.Get("voice")
	if voice == "" {
		http.Error(w, "no voice provided", http.StatusBadRequest)
		return
	}

	lang := q.Get("lang")
	if lang == "" {
		lang = s.cfg.DefaultLang
	}

	// Text comes from the POST body or the GET ?text parameter.
	text := q.Get("text")
	if r.Method == http.MethodPost {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
			return
		}
		text = string(body)
	}
	if text == "" {
		http.Error(w, "no text provided", http.StatusBadRequest)
		return
	}

	useCache := s.cfg.CacheDefault
	if raw := q.Get("cache"); raw != "" {
		useCache = convertBool(raw)
	}

	opts := s.defaults
	opts.Explicit = make(map[string]bool)
	if vocoder := q.Get("vocoder"); vocoder != "" {
		opts.Quality = vocoder
		opts.Explicit["quality"] = true
	}
	var parseErr error
	opts.DenoiserStrength = floatParam(q, "denoiserStrength", opts.DenoiserStrength, "denoiser_strength", opts.Explicit, &parseErr)
	opts.NoiseScale = floatParam(q, "noiseScale", opts.NoiseScale, "noise_scale", opts.Explicit, &parseErr)
	opts.LengthScale = floatParam(q, "lengthScale", opts.LengthScale, "length_scale", opts.Explicit, &parseErr)
	if parseErr != nil {
		http.Error(w, parseErr.Error(), http.StatusBadRequest)
		return
	}

	if speaker := q.Get("speakerId"); speaker != "" && !strings.Contains(voice, "#") {
		voice += "#" + speaker
	}

	req := tts.Request{
		Text:    text,
		Voice:   voice,
		Lang:    lang,
		SSML:    convertBool(q.Get("ssml")),
		NoCache: !useCache,
		Options: opts,
	}

	wav, err := s.synth.Synthesize(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	_, _ = w.Write(wav)
}

// handleVoices answers GET /api/voices with a JSON object keyed by
// fully-qualified voice id. Each filter parameter may repeat; a voice
// passes when it matches any of the given values.
func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	languages := toSet(q["language"])
	locales := toSet(q["locale"])
	genders := toSet(q["gender"])
	engines := toSet(q["tts_name"])

	entries, err := s.synth.Voices(r.Context(), tts.VoiceFilter{})
	if err != nil {
		s.writeError(w, err)
		return
	}

	voices := make(map[string]voiceRecord)
	for _, entry := range entries {
		engine, _, _ := strings.Cut(entry.FullID, ":")
		if !inSet(engines, engine) {
			continue
		}
		if !inSet(languages, entry.Voice.Language) {
			continue
		}
		if !inSet(locales, entry.Voice.Locale) {
			continue
		}
		if !inSet(genders, entry.Voice.Gender) {
			continue
		}
		voices[entry.FullID] = voiceRecord{Voice: entry.Voice, TTSName: engine}
	}

	writeJSON(w, voices)
}

// handleLanguages answers GET /api/languages with the distinct language
// codes, optionally limited to the given tts_name engines.
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	engines := toSet(r.URL.Query()["tts_name"])

	entries, err := s.synth.Voices(r.Context(), tts.VoiceFilter{})
	if err != nil {
		s.writeError(w, err)
		return
	}

	seen := make(map[string]struct{})
	languages := []string{}
	for _, entry := range entries {
		engine, _, _ := strings.Cut(entry.FullID, ":")
		if !inSet(engines, engine) {
			continue
		}
		lang := entry.Voice.Language
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		languages = append(languages, lang)
	}

	writeJSON(w, languages)
}

// handleProcess answers the MaryTTS-compatible /process endpoint. The
// VOICE parameter may carry a vocoder quality after a semicolon.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var text, voice string
	if r.Method == http.MethodPost {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
			return
		}
		form, err := url.ParseQuery(string(body))
		if err != nil {
			http.Error(w, "parsing form: "+err.Error(), http.StatusBadRequest)
			return
		}
		text = form.Get("INPUT_TEXT")
		voice = form.Get("VOICE")
	} else {
		q := r.URL.Query()
		text = q.Get("INPUT_TEXT")
		voice = q.Get("VOICE")
	}
	if text == "" {
		http.Error(w, "no text provided", http.StatusBadRequest)
		return
	}

	opts := s.defaults
	if base, vocoder, ok := strings.Cut(voice, ";"); ok {
		voice = base
		opts.Quality = vocoder
	}

	req := tts.Request{
		Text:    text,
		Voice:   voice,
		Lang:    s.cfg.DefaultLang,
		NoCache: !s.cfg.CacheDefault,
		Options: opts,
	}

	wav, err := s.synth.Synthesize(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	_, _ = w.Write(wav)
}

// handleMaryVoices answers the MaryTTS-compatible /voices endpoint: one
// fully-qualified voice id per line.
func (s *Server) handleMaryVoices(w http.ResponseWriter, r *http.Request) {
	entries, err := s.synth.Voices(r.Context(), tts.VoiceFilter{})
	if err != nil {
		s.writeError(w, err)
		return
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.FullID)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, strings.Join(ids, "\n"))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, s.version)
}

// writeError maps gateway errors to HTTP status codes. Resolution and
// input problems are the caller's fault; everything else is ours.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tts.ErrVoiceNotResolved),
		errors.Is(err, tts.ErrUnknownEngine),
		errors.Is(err, tts.ErrVoiceNotFound),
		errors.Is(err, tts.ErrEmptyText):
		status = http.StatusBadRequest
	}
	s.logger.Error("request failed", "err", err)
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

// convertBool interprets HTML form booleans.
func convertBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1", "enable":
		return true
	}
	return false
}

// floatParam reads an optional float query parameter, recording it in
// the explicit set when present.
func floatParam(q url.Values, name string, fallback float64, explicitKey string, explicit map[string]bool, parseErr *error) float64 {
	raw := q.Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if *parseErr == nil {
			*parseErr = errors.New("invalid " + name + ": " + raw)
		}
		return fallback
	}
	explicit[explicitKey] = true
	return v
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// inSet reports membership, treating a nil set as "no filter".
func inSet(set map[string]struct{}, v string) bool {
	if set == nil {
		return true
	}
	_, ok := set[v]
	return ok
}
