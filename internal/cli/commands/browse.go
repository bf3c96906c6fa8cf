package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tl/afv/internal/tui"
)

// BrowseOptions holds command-line options for the browse command.
type BrowseOptions struct {
	channel  channelOptions
	Language string
}

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	opts := &BrowseOptions{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactive snapshot viewer",
		Long: `Open a terminal view with the channel status card and the last snapshot.

Keys:
  r      capture and parse a new snapshot
  s      refresh the channel status
  v      toggle track ids and metadata
  ↑/↓    scroll
  q      quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts)
		},
	}

	addChannelFlags(cmd.Flags(), &opts.channel)
	cmd.Flags().StringVar(&opts.Language, "lang", "", "Report language (zh|en)")

	return cmd
}

func runBrowse(cmd *cobra.Command, opts *BrowseOptions) error {
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

	session, err := newSession(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer session.Channel().Close()

	lang := cfg.Output.Language
	if opts.Language != "" {
		lang = opts.Language
	}

	p := tea.NewProgram(tui.InitialModel(session, lang),
		tea.WithAltScreen(),
		tea.WithContext(commandContext(cmd)),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
