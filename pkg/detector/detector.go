// Package detector inspects audio_flinger dumps and explains why a parse
// found what it found.
package detector

import (
	"context"
	"strings"

	"github.com/tl/afv/pkg/parser"
)

// Inspection holds the structural findings for one dump.
type Inspection struct {
	Lines    int
	Sentinel string // channel failure text, empty for a real dump

	ClientsSection bool     // clients marker present
	Clients        int      // bindings recorded
	Excluded       int      // rows dropped for the system uid prefix
	ClientMisses   []string // sample section lines that failed the client grammar

	Threads        int
	StandbyThreads int
	ActiveTables   int
	RejectedRows   []string // sample table rows that failed the track grammar
	RowsSkipped    int

	RelaxedRows int // matches of the relaxed grammar over the whole text
	Pass        parser.Pass
	Tracks      int
	UnknownPIDs []string // track pids missing from the registry

	Findings []Finding
}

// Severity classifies a finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is one diagnosis with an optional remedy.
type Finding struct {
	Severity Severity
	Message  string
	Hint     string
}

// Detector inspects dumps with a grammar.
type Detector struct {
	grammar    *parser.Grammar
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets how many failing lines are kept as examples (default 3).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithGrammar inspects with g instead of the default grammar.
func WithGrammar(g *parser.Grammar) Option {
	return func(d *Detector) {
		if g != nil {
			d.grammar = g
		}
	}
}

// New creates a new Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		grammar:    parser.DefaultGrammar(),
		sampleSize: 3,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// InspectFile reads a dump ("-" for stdin) and inspects it.
func (d *Detector) InspectFile(ctx context.Context, path string) (*Inspection, error) {
	raw, err := parser.ReadDump(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.Inspect(raw), nil
}

// Inspect examines raw.
func (d *Detector) Inspect(raw string) *Inspection {
	in := &Inspection{Pass: parser.PassNone}
	if raw != "" {
		in.Lines = strings.Count(raw, "\n")
		if !strings.HasSuffix(raw, "\n") {
			in.Lines++
		}
	}

	if sentinel, ok := parser.DetectSentinel(raw); ok {
		in.Sentinel = sentinel
		in.Findings = append(in.Findings, Finding{
			Severity: SeverityError,
			Message:  "input is a channel failure, not a dump: " + sentinel,
			Hint:     "check the channel with `afv status`",
		})
		return in
	}

	d.inspectClients(raw, in)
	registry := d.grammar.ExtractClients(raw)
	in.Clients = registry.Len()

	scan := d.grammar.Scan(raw, registry)
	in.Threads = scan.Threads
	in.StandbyThreads = scan.StandbyThreads
	in.ActiveTables = scan.ActiveTables
	in.RowsSkipped = scan.RowsSkipped
	in.RejectedRows = d.sample(scan.Rejected)
	in.Pass = scan.Pass
	in.Tracks = len(scan.Tracks)
	in.RelaxedRows = len(d.grammar.RelaxedTrackRow.FindAll(raw))

	seen := make(map[string]bool)
	for _, t := range scan.Tracks {
		if parser.IsPlaceholder(t.ApplicationID) && !seen[t.ClientPID] {
			seen[t.ClientPID] = true
			in.UnknownPIDs = append(in.UnknownPIDs, t.ClientPID)
		}
	}

	in.Findings = append(in.Findings, d.diagnose(in)...)
	return in
}

func (d *Detector) inspectClients(raw string, in *Inspection) {
	section := d.grammar.ClientSection(raw)
	if section == nil {
		return
	}
	in.ClientsSection = true

	var misses []string
	for _, line := range section {
		trimmed := strings.TrimSpace(line)
		row, ok := d.grammar.ClientRow.Match(trimmed)
		if !ok {
			misses = append(misses, trimmed)
			continue
		}
		if strings.HasPrefix(row["app"], d.grammar.Markers.ExcludedAppPrefix) {
			in.Excluded++
		}
	}
	in.ClientMisses = d.sample(misses)
}

func (d *Detector) sample(lines []string) []string {
	if len(lines) > d.sampleSize {
		return lines[:d.sampleSize]
	}
	return lines
}

// diagnose turns counts into findings, most fundamental first.
func (d *Detector) diagnose(in *Inspection) []Finding {
	m := d.grammar.Markers
	var out []Finding

	switch {
	case !in.ClientsSection:
		out = append(out, Finding{
			Severity: SeverityWarning,
			Message:  "no " + quote(m.ClientsStart) + " section; applications will be shown by pid",
			Hint:     "set grammar.markers.clients_start if the vendor renames the section",
		})
	case in.Clients == 0 && in.Excluded == 0:
		out = append(out, Finding{
			Severity: SeverityWarning,
			Message:  "clients section found but no row matched the client grammar",
			Hint:     "override grammar.client_row; first rows: " + strings.Join(in.ClientMisses, " | "),
		})
	}

	switch {
	case in.Threads == 0:
		out = append(out, Finding{
			Severity: SeverityError,
			Message:  "no " + quote(m.ThreadDelimiter) + " subsections",
			Hint:     "set grammar.markers.thread_delimiter for this dump layout",
		})
	case in.StandbyThreads == in.Threads:
		out = append(out, Finding{
			Severity: SeverityInfo,
			Message:  "every output thread is in standby; nothing is playing",
			Hint:     "start playback and capture again",
		})
	case in.ActiveTables == 0:
		out = append(out, Finding{
			Severity: SeverityError,
			Message:  "no active tracks header in running threads",
			Hint:     "set grammar.markers.tracks_header and tracks_active",
		})
	}

	if in.Pass == parser.PassNone && in.RowsSkipped > 0 {
		out = append(out, Finding{
			Severity: SeverityError,
			Message:  "active track rows did not match the track grammar",
			Hint:     "override grammar.active_track_row; first rows: " + strings.Join(in.RejectedRows, " | "),
		})
	}

	if in.Pass == parser.PassRelaxed {
		out = append(out, Finding{
			Severity: SeverityWarning,
			Message:  "tracks were found only by the relaxed whole-text scan",
			Hint:     "relaxed matches ignore thread state and may include standby threads",
		})
	}

	if n := len(in.UnknownPIDs); n > 0 {
		out = append(out, Finding{
			Severity: SeverityInfo,
			Message:  "track pids missing from the clients section: " + strings.Join(in.UnknownPIDs, ", "),
		})
	}

	return out
}

func quote(s string) string {
	return "'" + s + "'"
}

// OK reports whether the structured pass found tracks.
func (in *Inspection) OK() bool {
	return in.Pass == parser.PassStructured
}

// HasErrors reports whether any finding is an error.
func (in *Inspection) HasErrors() bool {
	for _, f := range in.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
