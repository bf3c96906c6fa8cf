package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tl/afv/pkg/parser"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
	msg  messages
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts, msg: messagesFor(opts.Language)}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text. Channel failures are written verbatim.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if report.IsFailure() {
		_, err := io.WriteString(w, report.Failure)
		return err
	}
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	if !report.HasTracks() {
		fmt.Fprintln(w, f.msg.quietNone)
		return nil
	}
	fmt.Fprintf(w, f.msg.quiet+"\n",
		report.Summary.Tracks,
		report.Summary.Applications,
		strings.Join(report.Summary.SampleRates, ", "))
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, f.msg.title)

	if !report.HasTracks() {
		fmt.Fprintln(w, f.msg.noTracks)
		fmt.Fprintln(w)
		fmt.Fprintln(w, f.msg.rawHeader)
		fmt.Fprintln(w, report.Raw)
		return nil
	}

	fmt.Fprintf(w, f.msg.found+"\n\n", report.Summary.Tracks)
	for _, track := range report.Snapshot.Tracks {
		f.formatTrack(track, w)
	}

	fmt.Fprintln(w, f.msg.stats)
	fmt.Fprintf(w, f.msg.rates+"\n", strings.Join(report.Snapshot.SampleRates, ", "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, f.msg.appStats)
	for _, c := range report.Snapshot.AppCounts {
		fmt.Fprintf(w, f.msg.appLine+"\n", c.ApplicationID, c.Tracks)
	}

	if f.opts.Verbose {
		f.formatMetadata(report, w)
	}
	return nil
}

func (f *TextFormatter) formatTrack(track parser.TrackRecord, w io.Writer) {
	fmt.Fprintf(w, f.msg.app+"\n", track.ApplicationID)
	fmt.Fprintf(w, f.msg.pid+"\n", track.ClientPID)
	if f.opts.Verbose {
		fmt.Fprintf(w, f.msg.trackID+"\n", track.TrackID)
	}
	fmt.Fprintf(w, f.msg.rate+"\n", track.SampleRateHz)
	fmt.Fprintln(w, "---")
}

func (f *TextFormatter) formatMetadata(report *Report, w io.Writer) {
	md := report.Metadata
	fmt.Fprintln(w)
	fmt.Fprintf(w, f.msg.source+"\n", md.Source)
	fmt.Fprintf(w, f.msg.pass+"\n", report.Summary.Pass)
	fmt.Fprintf(w, f.msg.threads+"\n", md.Threads, md.StandbyThreads)
	fmt.Fprintf(w, f.msg.duration+"\n", md.Duration.Round(1e6))
}
