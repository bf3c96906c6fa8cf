package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tcnksm/go-latest"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Release repository queried by `version --check`.
const (
	releaseOwner = "tl"
	releaseRepo  = "afv"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version of afv, and with --check compare it with the latest release.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "afv %s\n", Version)
			if check {
				checkUpdate(cmd, &latest.GithubTag{Owner: releaseOwner, Repository: releaseRepo})
			}
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")

	return cmd
}

// checkUpdate reports whether a newer release exists. Lookup failures are
// reported but never fail the command.
func checkUpdate(cmd *cobra.Command, source latest.Source) {
	out := cmd.OutOrStdout()

	res, err := latest.Check(source, Version)
	if err != nil {
		warningColor.Fprintf(out, "Could not check for updates: %v\n", err)
		return
	}

	if res.Outdated {
		warningColor.Fprintf(out, "A new version is available: %s (you have %s)\n", res.Current, Version)
		fmt.Fprintf(out, "Download it from https://github.com/%s/%s/releases\n", releaseOwner, releaseRepo)
	} else {
		successColor.Fprintf(out, "You are using the latest version: %s\n", Version)
	}
}
