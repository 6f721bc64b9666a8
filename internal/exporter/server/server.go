package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/collector"
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/config"
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/metrics"
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/wgconfig"
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/shared/errors"
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/shared/logger"
)

const contentType = "text/plain; version=0.0.4; charset=utf-8"

// Server exposes the /metrics endpoint with proper lifecycle management.
// Every scrape builds an independent model from fresh input, so concurrent
// requests share no mutable state.
type Server struct {
	cfg       *config.Config
	collector collector.Collector
	renderer  *metrics.Renderer
	self      *selfMetrics
	log       *logger.Logger

	server     *http.Server
	signalChan chan os.Signal

	// readFile is swapped out in tests.
	readFile func(string) ([]byte, error)
}

// New creates a new exporter server instance.
func New(cfg *config.Config, col collector.Collector, version string, log *logger.Logger) *Server {
	return &Server{
		cfg:       cfg,
		collector: col,
		renderer:  metrics.NewRenderer(cfg.RenderOptions()),
		self:      newSelfMetrics(version),
		log:       log,
		server: &http.Server{
			Addr:         net.JoinHostPort(cfg.ListenAddress, strconv.Itoa(cfg.ListenPort)),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		signalChan: make(chan os.Signal, 1),
		readFile:   os.ReadFile,
	}
}

// Start starts the HTTP server and begins serving requests.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/metrics", s.handleMetrics)
	s.server.Handler = mux

	s.log.InfoContext(ctx, "starting exporter", slog.String("address", s.server.Addr))

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("exporter server failed to start: %w", err)
		}
	}()

	// Check if server started successfully
	select {
	case err := <-errChan:
		return err
	case <-time.After(100 * time.Millisecond):
		s.log.InfoContext(ctx, "exporter listening", slog.String("address", s.server.Addr))
		return nil
	}
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.log.InfoContext(ctx, "shutting down exporter")
	return s.server.Shutdown(ctx)
}

// WaitForShutdown blocks until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) WaitForShutdown() {
	signal.Notify(s.signalChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-s.signalChan
	s.log.Info("received shutdown signal", slog.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Stop(shutdownCtx); err != nil {
		s.log.Error("error during graceful shutdown", slog.String("error", err.Error()))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<html><head><title>WireGuard Exporter</title></head><body><h1>WireGuard Exporter</h1><p><a href="/metrics">Metrics</a></p></body></html>`)
}

// handleMetrics serves one scrape. Any core error aborts the whole render
// with a 500; a half-built document is never returned.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	ctx := logger.AddRequestIDToContext(r.Context(), requestID)
	start := time.Now()

	body, err := s.scrape(ctx)
	duration := time.Since(start)
	s.self.scrapeDuration.Observe(duration.Seconds())

	if err != nil {
		s.self.scrapeErrors.Inc()
		s.log.ErrorCtx(ctx, "scrape failed", err)
		http.Error(w, "scrape failed", http.StatusInternalServerError)
		s.log.HTTPRequest(ctx, r.Method, r.URL.Path, http.StatusInternalServerError, duration)
		return
	}
	s.self.scrapes.Inc()

	if self, err := s.self.render(); err == nil {
		body += self
	} else {
		s.log.ErrorCtx(ctx, "failed to render self metrics", err)
	}

	w.Header().Set("Content-Type", contentType)
	fmt.Fprint(w, body)
	s.log.HTTPRequest(ctx, r.Method, r.URL.Path, http.StatusOK, duration)
}

// scrape runs the full pipeline: collect, annotate, render.
func (s *Server) scrape(ctx context.Context) (string, error) {
	start := time.Now()

	model, err := s.collector.Collect(ctx)
	if err != nil {
		return "", err
	}

	peers, err := s.loadPeerAnnotations()
	if err != nil {
		return "", err
	}

	body := s.renderer.Render(model, peers)
	s.log.Scrape(ctx, len(model.Interfaces), model.EndpointCount(), time.Since(start))
	return body, nil
}

// loadPeerAnnotations reads the configured files on every scrape so config
// edits show up without a restart. File contents are joined before parsing,
// matching the per-file [Peer] block structure.
func (s *Server) loadPeerAnnotations() (wgconfig.PeerMap, error) {
	if len(s.cfg.ConfigFiles) == 0 {
		return nil, nil
	}

	contents := make([]string, 0, len(s.cfg.ConfigFiles))
	for _, path := range s.cfg.ConfigFiles {
		data, err := s.readFile(path)
		if err != nil {
			return nil, errors.NewReadError(path, err)
		}
		contents = append(contents, string(data))
	}

	return wgconfig.ParsePeers(strings.Join(contents, "\n"))
}
