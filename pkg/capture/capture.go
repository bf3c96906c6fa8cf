// Package capture ties a privileged channel to the analyzer: acquire a dump,
// parse it and record metrics.
package capture

import (
	"context"
	"io"
	"log/slog"

	"github.com/tl/afv/pkg/analyzer"
	"github.com/tl/afv/pkg/channel"
	"github.com/tl/afv/pkg/metrics"
)

// Session captures dumps over one channel.
type Session struct {
	channel  channel.Channel
	command  string
	analyzer *analyzer.Analyzer
	metrics  *metrics.PromMetrics
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithAnalyzer sets the analyzer used to parse dumps.
func WithAnalyzer(a *analyzer.Analyzer) Option {
	return func(s *Session) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithMetrics records every analysis in m.
func WithMetrics(m *metrics.PromMetrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates a session running command over ch.
func NewSession(ch channel.Channel, command string, opts ...Option) *Session {
	s := &Session{
		channel:  ch,
		command:  command,
		analyzer: analyzer.NewAnalyzer(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Channel returns the session channel.
func (s *Session) Channel() channel.Channel {
	return s.channel
}

// Capture acquires a dump and analyzes it. Channel failures are reported in
// the result, not as errors.
func (s *Session) Capture(ctx context.Context) (*analyzer.AnalysisResult, error) {
	s.logger.Info("capturing dump", "channel", s.channel.Name(), "command", s.command)
	raw := channel.Acquire(ctx, s.channel, s.command)
	return s.Parse(ctx, s.channel.Name(), raw)
}

// Parse analyzes a dump obtained elsewhere.
func (s *Session) Parse(ctx context.Context, source, raw string) (*analyzer.AnalysisResult, error) {
	result, err := s.analyzer.Analyze(ctx, source, raw)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveResult(result)

	if result.IsFailure() {
		s.logger.Warn("capture failed", "source", source, "failure", result.Failure)
	} else {
		s.logger.Info("dump analyzed", "source", source,
			"tracks", len(result.Snapshot.Tracks), "pass", result.Metadata.Pass,
			"capture_id", result.Metadata.CaptureID)
	}
	return result, nil
}

// Status reports the channel status.
func (s *Session) Status(ctx context.Context) (channel.Status, error) {
	return s.channel.Status(ctx)
}
