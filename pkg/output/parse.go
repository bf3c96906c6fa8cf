package output

import (
	"context"
	"fmt"
	"strings"

	"github.com/tl/afv/pkg/analyzer"
)

// NewFormatter returns the formatter for the named format (text or json).
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", name)
	}
}

// ParseAndFormat parses raw with the default grammar and returns the text
// report. Channel failure texts are returned unchanged.
func ParseAndFormat(raw string) string {
	result, err := analyzer.NewAnalyzer().Analyze(context.Background(), "", raw)
	if err != nil {
		// Background context is never cancelled.
		panic(err)
	}

	var b strings.Builder
	_ = NewTextFormatter(FormatOptions{}).Format(context.Background(), NewReport(result), &b)
	return b.String()
}
