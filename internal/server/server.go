// Package server exposes the synthesis gateway over HTTP. The JSON API
// lives under /api/, and a MaryTTS compatibility layer answers on
// /process and /voices so existing MaryTTS clients work unchanged.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voxgate/tts"
)

// Config holds the HTTP listener settings. Environment variables
// override whatever the config file supplied.
type Config struct {
	Host        string `env:"VOXGATE_HOST"`
	Port        int    `env:"VOXGATE_PORT"`
	DefaultLang string `env:"VOXGATE_LANGUAGE"`

	// CacheDefault enables the result cache for requests that carry no
	// explicit cache parameter.
	CacheDefault bool `env:"VOXGATE_CACHE"`
}

// Server serves synthesis requests over HTTP.
type Server struct {
	synth    *tts.Synthesizer
	defaults tts.SynthesisOptions
	cfg      Config
	version  string
	logger   *log.Logger

	httpServer *http.Server
}

// New wires a server around a synthesizer. defaults supplies the
// synthesis parameters used when a request omits them.
func New(cfg Config, synth *tts.Synthesizer, defaults tts.SynthesisOptions, version string, logger *log.Logger) *Server {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 5500
	}
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = "en"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		synth:    synth,
		defaults: defaults,
		cfg:      cfg,
		version:  version,
		logger:   logger.With("component", "server"),
	}
}

// Handler builds the route table. Exposed separately so tests can drive
// the mux without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/tts", s.handleTTS)
	mux.HandleFunc("POST /api/tts", s.handleTTS)
	mux.HandleFunc("GET /api/voices", s.handleVoices)
	mux.HandleFunc("GET /api/languages", s.handleLanguages)

	// MaryTTS compatibility layer.
	mux.HandleFunc("GET /process", s.handleProcess)
	mux.HandleFunc("POST /process", s.handleProcess)
	mux.HandleFunc("GET /voices", s.handleMaryVoices)
	mux.HandleFunc("GET /version", s.handleVersion)

	return mux
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("listening", "host", s.cfg.Host, "port", s.cfg.Port)

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}
