package analyzer

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tl/afv/pkg/parser"
)

// Analyzer parses dumps into snapshots.
type Analyzer struct {
	grammar   *parser.Grammar
	appFilter map[string]bool // nil means all applications
	logger    *slog.Logger
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithGrammar sets the markers and row grammars used to read dumps.
func WithGrammar(g *parser.Grammar) AnalyzerOption {
	return func(a *Analyzer) {
		if g != nil {
			a.grammar = g
		}
	}
}

// WithAppFilter keeps only tracks owned by the given application ids.
func WithAppFilter(apps []string) AnalyzerOption {
	return func(a *Analyzer) {
		if len(apps) > 0 {
			a.appFilter = make(map[string]bool)
			for _, app := range apps {
				a.appFilter[app] = true
			}
		}
	}
}

// WithLogger sets the logger for per-client and per-track debug output.
func WithLogger(l *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAnalyzer creates an analyzer using the default grammar unless overridden.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		grammar: parser.DefaultGrammar(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalysisResult contains the outcome of analyzing one dump.
type AnalysisResult struct {
	// Snapshot is nil when the input was a channel failure.
	Snapshot *Snapshot

	// Failure is the channel failure text, passed through unmodified.
	Failure string

	// Raw is the input text.
	Raw string

	// Clients are the registry bindings found in the dump.
	Clients []parser.ClientEntry

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// Source names where the dump came from (file path, device serial).
	Source string

	// CaptureID uniquely identifies this analysis.
	CaptureID string

	// Pass is the scan that produced the tracks.
	Pass parser.Pass

	// Threads is the number of output thread subsections.
	Threads int

	// StandbyThreads is the number of subsections skipped as standby.
	StandbyThreads int

	// RowsSkipped counts table rows that failed the row grammar.
	RowsSkipped int

	// LinesProcessed is the number of lines in the dump.
	LinesProcessed int

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time
}

// IsFailure reports whether the input carried a channel failure.
func (r *AnalysisResult) IsFailure() bool {
	return r.Failure != ""
}

// HasTracks reports whether any active track was found.
func (r *AnalysisResult) HasTracks() bool {
	return r.Snapshot.HasTracks()
}

// Duration returns how long the analysis took.
func (r *AnalysisResult) Duration() time.Duration {
	return r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// Analyze parses raw. Malformed or missing structure never produces an
// error; only a cancelled context does.
func (a *Analyzer) Analyze(ctx context.Context, source, raw string) (*AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		Raw: raw,
		Metadata: AnalysisMetadata{
			Source:    source,
			CaptureID: uuid.NewString(),
			Pass:      parser.PassNone,
			StartTime: time.Now(),
		},
	}
	defer func() { result.Metadata.EndTime = time.Now() }()

	if sentinel, ok := parser.DetectSentinel(raw); ok {
		a.logger.Warn("channel failure in dump", "source", source, "sentinel", sentinel)
		result.Failure = raw
		return result, nil
	}

	result.Metadata.LinesProcessed = strings.Count(raw, "\n")
	if raw != "" && !strings.HasSuffix(raw, "\n") {
		result.Metadata.LinesProcessed++
	}

	registry := a.grammar.ExtractClients(raw)
	result.Clients = registry.Entries()
	for _, c := range result.Clients {
		a.logger.Debug("found client", "pid", c.PID, "package", c.ApplicationID)
	}
	if registry.Len() == 0 {
		a.logger.Debug("no notification clients section", "source", source)
	}

	scan := a.grammar.Scan(raw, registry)
	result.Metadata.Pass = scan.Pass
	result.Metadata.Threads = scan.Threads
	result.Metadata.StandbyThreads = scan.StandbyThreads
	result.Metadata.RowsSkipped = scan.RowsSkipped

	tracks := make([]parser.TrackRecord, 0, len(scan.Tracks))
	for _, t := range scan.Tracks {
		if a.appFilter != nil && !a.appFilter[t.ApplicationID] {
			continue
		}
		a.logger.Debug("found active track",
			"pass", scan.Pass, "package", t.ApplicationID, "pid", t.ClientPID,
			"track", t.TrackID, "sample_rate", t.SampleRateHz)
		tracks = append(tracks, t)
	}

	result.Snapshot = Aggregate(tracks)
	return result, nil
}

// Parse is the pure parse entry point: raw text to snapshot, default grammar.
func Parse(raw string) *Snapshot {
	registry := parser.ExtractClients(raw)
	return Aggregate(parser.ScanActiveTracks(raw, registry))
}
