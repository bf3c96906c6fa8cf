package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	opts := &channelOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the privileged channel is running and authorized",
		Long: `Check the configured channel without capturing a dump.

Reports whether the channel is running, whether this host is authorized,
and the privilege the diagnostic command will run with (Root, ADB or
Unknown).

Exit codes:
  0 - Channel ready
  1 - Channel not running or not authorized
  2 - Configuration or runtime error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, opts)
		},
	}

	addChannelFlags(cmd.Flags(), opts)

	return cmd
}

func runStatus(cmd *cobra.Command, opts *channelOptions) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	session, err := newSession(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer session.Channel().Close()

	// A channel that cannot be queried (adb missing, shell gone) is down.
	st, err := session.Status(ctx)
	if err != nil {
		logger.Debug("status check failed", "channel", session.Channel().Name(), "error", err)
		st.Running, st.Authorized = false, false
		if st.Detail == "" {
			st.Detail = err.Error()
		}
	}

	out := cmd.OutOrStdout()
	name := session.Channel().Name()
	switch {
	case st.Ready():
		successColor.Fprintf(out, "[READY] %s: %s\n", name, st)
	case st.Running:
		warningColor.Fprintf(out, "[WAIT]  %s: %s\n", name, st)
		fmt.Fprintln(out, "        Accept the authorization prompt on the device, then retry.")
	default:
		errorColor.Fprintf(out, "[DOWN]  %s: %s\n", name, st)
	}
	if st.UID != "" {
		infoColor.Fprintf(out, "        uid %s\n", st.UID)
	}

	if !st.Ready() {
		ExitCode = 1
	}
	return nil
}
