// Package output provides formatting and output generation for audio snapshots.
package output

import (
	"time"

	"github.com/tl/afv/pkg/analyzer"
	"github.com/tl/afv/pkg/parser"
)

// Report is the complete output for one dump.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Snapshot holds the tracks and aggregates. Nil on channel failure.
	Snapshot *analyzer.Snapshot `json:"snapshot,omitempty"`

	// Failure is the channel failure text, reported verbatim.
	Failure string `json:"failure,omitempty"`

	// Raw is the full dump, attached only when no active track was found.
	Raw string `json:"raw,omitempty"`

	// Clients are the pid to package bindings found in the dump.
	Clients []parser.ClientEntry `json:"clients,omitempty"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	Tracks       int         `json:"tracks"`
	Applications int         `json:"applications"`
	SampleRates  []string    `json:"sample_rates"`
	Pass         parser.Pass `json:"pass"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	Source         string        `json:"source"`
	CaptureID      string        `json:"capture_id"`
	Threads        int           `json:"threads"`
	StandbyThreads int           `json:"standby_threads"`
	RowsSkipped    int           `json:"rows_skipped"`
	LinesProcessed int           `json:"lines_processed"`
	AnalyzedAt     time.Time     `json:"analyzed_at"`
	Duration       time.Duration `json:"duration"`
}

// NewReport creates a Report from an analysis result.
func NewReport(result *analyzer.AnalysisResult) *Report {
	report := &Report{
		Failure: result.Failure,
		Clients: result.Clients,
		Metadata: Metadata{
			Source:         result.Metadata.Source,
			CaptureID:      result.Metadata.CaptureID,
			Threads:        result.Metadata.Threads,
			StandbyThreads: result.Metadata.StandbyThreads,
			RowsSkipped:    result.Metadata.RowsSkipped,
			LinesProcessed: result.Metadata.LinesProcessed,
			AnalyzedAt:     result.Metadata.EndTime,
			Duration:       result.Duration(),
		},
		Summary: Summary{
			SampleRates: []string{},
			Pass:        result.Metadata.Pass,
		},
	}

	if result.IsFailure() {
		return report
	}

	report.Snapshot = result.Snapshot
	report.Summary.Tracks = len(result.Snapshot.Tracks)
	report.Summary.Applications = result.Snapshot.Applications()
	report.Summary.SampleRates = result.Snapshot.SampleRates

	if !result.HasTracks() {
		report.Raw = result.Raw
	}

	return report
}

// HasTracks returns true if any active track was found.
func (r *Report) HasTracks() bool {
	return r.Summary.Tracks > 0
}

// IsFailure returns true if the dump was a channel failure.
func (r *Report) IsFailure() bool {
	return r.Failure != ""
}
