package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tl/afv/pkg/analyzer"
	"github.com/tl/afv/pkg/output"
	"github.com/tl/afv/pkg/parser"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	reportOptions
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [dump-file...]",
		Short: "Report active audio tracks in saved dumps",
		Long: `Parse saved audio_flinger dumps and report which applications are playing.

Arguments may be files or glob patterns; "-" or no argument reads stdin.
Channel failure texts in a dump are reported verbatim.

Exit codes:
  0 - Active tracks found in every dump
  1 - A dump had no active tracks or was a channel failure
  2 - Configuration or runtime error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	addReportFlags(cmd.Flags(), &opts.reportOptions)

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	formatter, err := opts.formatter(cfg)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{parser.StdinPath}
	}
	files, err := parser.ExpandDumpPaths(args)
	if err != nil {
		return fmt.Errorf("expanding dump paths: %w", err)
	}

	a := analyzer.NewAnalyzer(
		analyzer.WithGrammar(cfg.Grammar.Compiled()),
		analyzer.WithAppFilter(opts.Apps),
		analyzer.WithLogger(logger),
	)
	hooks := opts.webhooks(cfg)
	out := cmd.OutOrStdout()

	for i, file := range files {
		raw, err := parser.ReadDump(ctx, file)
		if err != nil {
			return err
		}

		result, err := a.Analyze(ctx, file, raw)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		report := output.NewReport(result)

		if len(files) > 1 && formatter.Name() == "text" {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "==> %s <==\n", file)
		}
		if err := formatter.Format(ctx, report, out); err != nil {
			return fmt.Errorf("formatting output: %w", err)
		}

		sendWebhooks(ctx, cmd.ErrOrStderr(), report, hooks)
		setExitCode(report)
	}

	return nil
}
