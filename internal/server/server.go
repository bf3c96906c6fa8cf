// Package server exposes snapshots over HTTP and a request/response
// websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tl/afv/pkg/capture"
	"github.com/tl/afv/pkg/config"
	"github.com/tl/afv/pkg/output"
	"github.com/tl/afv/pkg/webhook"
)

// maxDumpSize bounds POSTed dumps.
const maxDumpSize = 16 << 20

// Server serves captures from one session.
type Server struct {
	session  *capture.Session
	gatherer prometheus.Gatherer
	hooks    []config.WebhookConfig
	webhooks *webhook.Client
	language string
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Options configures a Server.
type Options struct {
	// Gatherer backs /metrics. Defaults to the Prometheus default gatherer.
	Gatherer prometheus.Gatherer

	// Webhooks fire after every capture made through the server.
	Webhooks []config.WebhookConfig

	// Language selects the text rendering (zh or en).
	Language string

	Logger *slog.Logger
}

// New creates a server around session.
func New(session *capture.Session, opts Options) *Server {
	s := &Server{
		session:  session,
		gatherer: opts.Gatherer,
		hooks:    opts.Webhooks,
		webhooks: webhook.NewClient(),
		language: opts.Language,
		logger:   opts.Logger,
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.language == "" {
		s.language = output.DefaultLanguage
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/parse", s.handleParse)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/ws", s.handleWebsocket)
	return mux
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// capture runs one capture and fires webhooks.
func (s *Server) capture(ctx context.Context) (*output.Report, error) {
	result, err := s.session.Capture(ctx)
	if err != nil {
		return nil, err
	}
	report := output.NewReport(result)

	for _, resp := range s.webhooks.Dispatch(ctx, report, s.hooks) {
		if !resp.Success() {
			s.logger.Warn("webhook failed", "webhook", resp.Name, "error", resp.Error)
		}
	}
	return report, nil
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := s.capture(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeReport(w, r, report)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxDumpSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "request"
	}
	result, err := s.session.Parse(r.Context(), source, string(body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeReport(w, r, output.NewReport(result))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.Status(r.Context())
	if err != nil {
		s.logger.Warn("status check failed", "error", err)
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Channel: s.session.Channel().Name(),
		Status:  st,
		Summary: st.String(),
	})
}

// writeReport renders JSON by default, or text when ?format=text.
func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, report *output.Report) {
	if r.URL.Query().Get("format") != "text" {
		writeJSON(w, http.StatusOK, report)
		return
	}

	lang := r.URL.Query().Get("lang")
	if !output.IsLanguage(lang) {
		lang = s.language
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	f := output.NewTextFormatter(output.FormatOptions{Language: lang})
	if err := f.Format(r.Context(), report, w); err != nil {
		s.logger.Warn("writing report", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// textReport renders report for websocket replies.
func (s *Server) textReport(ctx context.Context, report *output.Report) string {
	var b strings.Builder
	f := output.NewTextFormatter(output.FormatOptions{Language: s.language})
	_ = f.Format(ctx, report, &b)
	return b.String()
}
