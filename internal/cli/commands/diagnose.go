package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tl/afv/pkg/detector"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
	Samples int
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [dump-file]",
		Short: "Explain how a dump was read",
		Long: `Inspect the layout of a saved dump and explain the parse result.

Reports the sections found, output thread and standby counts, strict and
relaxed row matches, channel failure texts, and suggests grammar overrides
when a vendor dump does not match the defaults.

Example:
  afv diagnose dump.txt
  afv capture --save dump.txt && afv diagnose -v dump.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runDiagnose(cmd, path, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show sample lines that failed the grammar")
	cmd.Flags().IntVar(&opts.Samples, "samples", 3, "Number of failing lines to keep as examples")

	return cmd
}

func runDiagnose(cmd *cobra.Command, path string, opts *DiagnoseOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	d := detector.New(
		detector.WithGrammar(cfg.Grammar.Compiled()),
		detector.WithSampleSize(opts.Samples),
	)
	in, err := d.InspectFile(commandContext(cmd), path)
	if err != nil {
		return err
	}

	printInspection(cmd.OutOrStdout(), path, in, opts)

	if in.HasErrors() {
		ExitCode = 1
	}
	return nil
}

func printInspection(w io.Writer, path string, in *detector.Inspection, opts *DiagnoseOptions) {
	headerColor.Fprintf(w, "=== afv dump diagnostics: %s ===\n", path)
	fmt.Fprintln(w)

	if in.Sentinel != "" {
		fmt.Fprintf(w, "  Lines:            %d\n", in.Lines)
		fmt.Fprintf(w, "  Channel failure:  %s\n", in.Sentinel)
	} else {
		fmt.Fprintf(w, "  Lines:            %d\n", in.Lines)
		fmt.Fprintf(w, "  Clients section:  %t (%d bound, %d system)\n", in.ClientsSection, in.Clients, in.Excluded)
		fmt.Fprintf(w, "  Output threads:   %d (%d standby)\n", in.Threads, in.StandbyThreads)
		fmt.Fprintf(w, "  Active tables:    %d\n", in.ActiveTables)
		fmt.Fprintf(w, "  Rows skipped:     %d\n", in.RowsSkipped)
		fmt.Fprintf(w, "  Relaxed matches:  %d\n", in.RelaxedRows)
		fmt.Fprintf(w, "  Pass:             %s\n", in.Pass)
		fmt.Fprintf(w, "  Tracks:           %d\n", in.Tracks)
	}

	if opts.Verbose {
		printSamples(w, "Client rows not matched", in.ClientMisses)
		printSamples(w, "Track rows not matched", in.RejectedRows)
	}
	fmt.Fprintln(w)

	var warnCount, errCount int
	for _, f := range in.Findings {
		switch f.Severity {
		case detector.SeverityError:
			errCount++
			errorColor.Fprintf(w, "[FAIL] %s\n", f.Message)
		case detector.SeverityWarning:
			warnCount++
			warningColor.Fprintf(w, "[WARN] %s\n", f.Message)
		default:
			infoColor.Fprintf(w, "[INFO] %s\n", f.Message)
		}
		if f.Hint != "" {
			fmt.Fprintf(w, "      Hint: %s\n", f.Hint)
		}
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d warnings, %d errors\n", warnCount, errCount)

	switch {
	case errCount > 0:
		errorColor.Fprintln(w, "\nThe dump could not be read as expected.")
	case in.OK():
		successColor.Fprintln(w, "\nDump layout looks good!")
	case warnCount > 0:
		warningColor.Fprintln(w, "\nDump is usable but has warnings.")
	default:
		fmt.Fprintln(w, "\nNo active tracks in this dump.")
	}
}

func printSamples(w io.Writer, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s:\n", title)
	for _, l := range lines {
		fmt.Fprintf(w, "    - %s\n", truncate(l, 80))
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
