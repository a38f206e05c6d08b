// Package server exposes the transcription and fugue-generation pipeline
// over HTTP, mirroring the surrounding application's transcription service:
// health, transcribe, fugue, and MIDI export endpoints with JSON bodies in
// the NoteSequence interchange format.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kelseyhightower/envconfig"

	"github.com/tonearc/fuguewright/config"
	"github.com/tonearc/fuguewright/logging"
)

// Config holds server configuration, populated from the environment with
// the FUGUEWRIGHT_ prefix (FUGUEWRIGHT_PORT and so on).
type Config struct {
	Port            int           `envconfig:"PORT" default:"5000"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	Debug           bool          `envconfig:"DEBUG" default:"false"`
}

// LoadConfig reads the server configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("fuguewright", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Server is the HTTP server.
type Server struct {
	cfg    Config
	seg    config.SegmentationConfig
	router *chi.Mux
	logger logging.Logger
}

// New creates a server around the shared segmentation defaults.
func New(cfg Config) *Server {
	logger := logging.WithFields(logging.Fields{
		"component": "server",
	})
	if cfg.Debug {
		logging.SetLevel(logging.DebugLevel)
	}

	s := &Server{
		cfg:    cfg,
		seg:    config.DefaultSegmentationConfig(),
		router: chi.NewRouter(),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// Router returns the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/transcribe", s.handleTranscribe)
	r.Post("/api/fugue", s.handleFugue)
	r.Post("/api/export", s.handleExport)
}

// Run starts the server and blocks until SIGINT/SIGTERM.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		s.logger.Info("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error(err, "Shutdown error")
		}
		close(done)
	}()

	s.logger.Info("Server starting", logging.Fields{
		"port": s.cfg.Port,
	})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	<-done
	return nil
}
