// Package cli provides the command-line interface for afv.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tl/afv/internal/cli/commands"
	"github.com/tl/afv/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return execute(os.Args[1:], os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	commands.ExitCode = 0
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	potentialCommand := ""
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		potentialCommand = args[0]
	}

	if potentialCommand != "" && !isBuiltinCommand(rootCmd, potentialCommand) {
		if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
			return plugins.Execute(pluginPath, args[1:])
		}
		// Plugin not found - cobra reports the unknown command below
	}

	if err := rootCmd.Execute(); err != nil {
		if potentialCommand != "" && !isBuiltinCommand(rootCmd, potentialCommand) {
			_, _ = fmt.Fprintln(stderr, plugins.FormatNotFoundError(potentialCommand))
			return 2
		}
		// SilenceErrors prevents Cobra from printing this
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "afv",
		Short: "Show which Android applications are playing audio",
		Long: `afv reads the audio_flinger dump of an Android device and reports which
applications currently hold active audio tracks, with their sample rates.

The dump is captured over a privileged channel (adb shell by default, a
local shell on the device, or a saved file) and parsed in two passes: a
structured scan of the running output threads, then a relaxed whole-text
scan when the structured one finds nothing.

Exit codes:
  0 - Active tracks found
  1 - No active tracks, or the channel failed
  2 - Configuration or runtime error

PLUGINS:
  Unknown commands run afv-<command> binaries, searched in order:
    1. Same directory as the afv binary
    2. ~/.afv/plugins/ (or $AFV_PLUGIN_DIR)
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP(commands.FlagConfig, "c", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().String(commands.FlagLogLevel, "warn", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewCaptureCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewBrowseCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
