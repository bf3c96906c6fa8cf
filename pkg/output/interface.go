package output

import (
	"context"
	"io"
)

// Formatter renders snapshot reports in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds track ids and analysis metadata.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool

	// Language selects the text report language (zh, en). Defaults to zh.
	Language string
}
