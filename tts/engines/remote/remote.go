// Package remote forwards synthesis to another speech server over HTTP.
// The server is expected to expose the Larynx-style API: GET /api/tts
// returning WAV audio and GET /api/voices returning a JSON catalog.
package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/voxgate/tts"
)

// Config describes a remote speech server.
type Config struct {
	// Name registers the engine under a custom name. Defaults to
	// "remote".
	Name string

	// URL is the server base, e.g. "https://tts.example.com:5002".
	URL string

	// TLSVerify controls certificate verification. It defaults to
	// true; turning it off must be an explicit choice.
	TLSVerify *bool

	// Timeout bounds a single synthesis request. Zero means no limit.
	Timeout time.Duration

	// RequestsPerMinute throttles outbound calls. Zero disables
	// throttling.
	RequestsPerMinute int
}

// Engine implements tts.Engine against a remote server. The voice
// catalog is fetched once and reused; synthesis errors propagate while
// catalog errors degrade to an empty voice list.
type Engine struct {
	name    string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger

	mu     sync.Mutex
	voices []tts.Voice
	loaded bool
}

// New validates the base URL and builds the HTTP client. No network
// traffic happens until the first Voices or Say call.
func New(cfg Config, logger *log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.Default()
	}
	name := cfg.Name
	if name == "" {
		name = "remote"
	}
	logger = logger.With("engine", name)

	base, err := url.Parse(cfg.URL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: remote url %q", tts.ErrInvalidConfig, cfg.URL)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.TLSVerify != nil && !*cfg.TLSVerify {
		logger.Warn("TLS certificate verification disabled")
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Engine{
		name:    name,
		baseURL: strings.TrimRight(base.String(), "/"),
		client:  client,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Name implements tts.Engine.
func (e *Engine) Name() string { return e.name }

// Voices returns the cached remote catalog, fetching it on first use.
// A fetch failure yields an empty list so the registry can still serve
// the other engines; the next call retries.
func (e *Engine) Voices(ctx context.Context) ([]tts.Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		voices, err := e.fetchVoices(ctx)
		if err != nil {
			e.logger.Warn("voice catalog fetch failed", "err", err)
			return nil, nil
		}
		e.voices = voices
		e.loaded = true
	}

	out := make([]tts.Voice, len(e.voices))
	copy(out, e.voices)
	return out, nil
}

// Say issues a GET /api/tts request and returns the WAV body.
func (e *Engine) Say(ctx context.Context, text, voiceID string, opts tts.SynthesisOptions) ([]byte, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	query := url.Values{}
	query.Set("text", text)
	query.Set("voice", voiceID)
	query.Set("ssml", "false")
	query.Set("cache", "false")
	if opts.Quality != "" {
		query.Set("vocoder", opts.Quality)
	}
	if opts.DenoiserStrength > 0 {
		query.Set("denoiserStrength", formatFloat(opts.DenoiserStrength))
	}
	if opts.NoiseScale > 0 {
		query.Set("noiseScale", formatFloat(opts.NoiseScale))
	}
	if opts.LengthScale > 0 {
		query.Set("lengthScale", formatFloat(opts.LengthScale))
	}
	if opts.SpeakerID != "" {
		query.Set("speakerId", opts.SpeakerID)
	}

	reqURL := e.baseURL + "/api/tts?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("forwarding request", "voice", voiceID, "chars", len(text))
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tts.ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: remote status %d: %s",
			tts.ErrSynthesisFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return io.ReadAll(resp.Body)
}

// Shutdown implements tts.Engine.
func (e *Engine) Shutdown() error {
	e.client.CloseIdleConnections()
	return nil
}

// fetchVoices retrieves and decodes /api/voices. The payload is a map
// keyed by voice id.
func (e *Engine) fetchVoices(ctx context.Context) ([]tts.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/api/voices", nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote status %d", resp.StatusCode)
	}

	var catalog map[string]tts.Voice
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	voices := make([]tts.Voice, 0, len(catalog))
	for id, voice := range catalog {
		// The catalog key carries the engine prefix on the remote
		// side; the local id is the bare voice id.
		if voice.ID == "" {
			voice.ID = id
		}
		voices = append(voices, voice)
	}
	sort.Slice(voices, func(i, j int) bool { return voices[i].ID < voices[j].ID })

	e.logger.Debug("fetched voice catalog", "count", len(voices))
	return voices, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
