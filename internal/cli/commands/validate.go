package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tl/afv/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate an afv configuration file without capturing.

Checks:
  - YAML syntax
  - Channel mode and its required fields
  - Grammar marker and row pattern validity (named groups included)
  - Output format and language
  - Webhook URLs and triggers
  - Replay file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	successColor.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Channel:  %s\n", cfg.Channel.Mode)
	switch cfg.Channel.Mode {
	case config.ChannelModeADB:
		serial := cfg.Channel.Serial
		if serial == "" {
			serial = "(any)"
		}
		fmt.Fprintf(out, "  adb:      %s, serial %s\n", cfg.Channel.ADBPath, serial)
	case config.ChannelModeLocal:
		fmt.Fprintf(out, "  Shell:    %s\n", cfg.Channel.Shell)
	case config.ChannelModeFile:
		fmt.Fprintf(out, "  File:     %s\n", cfg.Channel.File)
	}
	fmt.Fprintf(out, "  Command:  %s (timeout %s)\n", cfg.Channel.Command, cfg.Channel.Timeout)
	fmt.Fprintf(out, "  Output:   %s, %s\n", cfg.Output.Format, cfg.Output.Language)
	fmt.Fprintf(out, "  Webhooks: %d\n", len(cfg.Webhooks))
	for i, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		fmt.Fprintf(out, "    %d. %s [%s]\n", i+1, name, wh.Trigger)
	}

	g := cfg.Grammar.Compiled()
	fmt.Fprintf(out, "\nGrammar:\n")
	fmt.Fprintf(out, "  clients:   %q\n", g.Markers.ClientsStart)
	fmt.Fprintf(out, "  threads:   %q\n", g.Markers.ThreadDelimiter)
	fmt.Fprintf(out, "  client:    %s\n", g.ClientRow)
	fmt.Fprintf(out, "  track:     %s\n", g.ActiveTrackRow)
	fmt.Fprintf(out, "  relaxed:   %s\n", g.RelaxedTrackRow)

	if cfg.Channel.Mode == config.ChannelModeFile {
		if _, err := os.Stat(cfg.Channel.File); err != nil {
			warningColor.Fprintf(out, "\nWarning: replay file %s is not readable: %v\n", cfg.Channel.File, err)
		}
	}

	return nil
}
