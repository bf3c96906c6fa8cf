package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tl/afv/pkg/output"
)

// CaptureOptions holds command-line options for the capture command.
type CaptureOptions struct {
	reportOptions
	channel channelOptions

	// Save keeps the raw dump (or failure text) at this path.
	Save string
}

// NewCaptureCommand creates the capture command.
func NewCaptureCommand() *cobra.Command {
	opts := &CaptureOptions{}

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a dump over the privileged channel and report active tracks",
		Long: `Run the audio_flinger diagnostic command over the configured channel
and report which applications are playing audio right now.

Channels:
  adb   - adb shell on a connected device (default)
  local - sh -c on this host (on-device or rooted shells)
  file  - replay a saved dump

Exit codes:
  0 - Active tracks found
  1 - No active tracks, or the channel failed
  2 - Configuration or runtime error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd, opts)
		},
	}

	addChannelFlags(cmd.Flags(), &opts.channel)
	addReportFlags(cmd.Flags(), &opts.reportOptions)
	cmd.Flags().StringVar(&opts.Save, "save", "", "Write the raw dump to this file")

	return cmd
}

func runCapture(cmd *cobra.Command, opts *CaptureOptions) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := opts.channel.apply(cfg); err != nil {
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

	session, err := newSession(cfg, logger, opts.Apps)
	if err != nil {
		return err
	}
	defer session.Channel().Close()

	result, err := session.Capture(ctx)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	if opts.Save != "" {
		if err := os.WriteFile(opts.Save, []byte(result.Raw), 0o644); err != nil { // #nosec G306 -- dumps are not secret
			return fmt.Errorf("saving dump: %w", err)
		}
		logger.Info("dump saved", "path", opts.Save, "bytes", len(result.Raw))
	}

	report := output.NewReport(result)
	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	sendWebhooks(ctx, cmd.ErrOrStderr(), report, opts.webhooks(cfg))
	setExitCode(report)

	return nil
}
