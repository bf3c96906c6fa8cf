package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tl/afv/pkg/analyzer"
	"github.com/tl/afv/pkg/capture"
	"github.com/tl/afv/pkg/channel"
	"github.com/tl/afv/pkg/config"
	"github.com/tl/afv/pkg/output"
	"github.com/tl/afv/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// Persistent flag names registered on the root command.
const (
	FlagConfig   = "config"
	FlagLogLevel = "log-level"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgBlue)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

// stringFlag returns the value of a flag from fs, or "" when the flag is not
// registered (sub-commands run without the root in tests).
func stringFlag(fs *pflag.FlagSet, name string) string {
	if f := fs.Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig loads the file named by --config, or the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := stringFlag(cmd.Flags(), FlagConfig)
	cfg, err := config.Load(commandContext(cmd), path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger for --log-level. Default is warn.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	level := slog.LevelWarn
	if name := stringFlag(cmd.Flags(), FlagLogLevel); name != "" {
		if err := level.UnmarshalText([]byte(name)); err != nil {
			return nil, fmt.Errorf("invalid log level %q (use debug, info, warn or error)", name)
		}
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}

// channelOptions overrides the configured channel from the command line.
type channelOptions struct {
	Mode    string
	Serial  string
	File    string
	Command string
	Timeout time.Duration
}

func addChannelFlags(fs *pflag.FlagSet, opts *channelOptions) {
	fs.StringVar(&opts.Mode, "mode", "", "Channel mode (adb|local|file)")
	fs.StringVarP(&opts.Serial, "serial", "s", "", "Device serial for adb mode")
	fs.StringVarP(&opts.File, "file", "f", "", "Replay a saved dump (implies --mode file)")
	fs.StringVar(&opts.Command, "command", "", "Diagnostic command to run")
	fs.DurationVar(&opts.Timeout, "timeout", 0, "Capture timeout")
}

// apply merges the flags into cfg and revalidates it.
func (o *channelOptions) apply(cfg *config.Config) error {
	if o.File != "" {
		cfg.Channel.File = o.File
		if o.Mode == "" {
			cfg.Channel.Mode = config.ChannelModeFile
		}
	}
	if o.Mode != "" {
		cfg.Channel.Mode = config.ChannelMode(o.Mode)
	}
	if o.Serial != "" {
		cfg.Channel.Serial = o.Serial
	}
	if o.Command != "" {
		cfg.Channel.Command = o.Command
	}
	if o.Timeout != 0 {
		cfg.Channel.Timeout = o.Timeout
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid channel flags: %w", err)
	}
	return nil
}

// newSession builds the channel and capture session for cfg.
func newSession(cfg *config.Config, logger *slog.Logger, apps []string) (*capture.Session, error) {
	ch, err := channel.New(cfg.Channel, channel.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("creating channel: %w", err)
	}
	a := analyzer.NewAnalyzer(
		analyzer.WithGrammar(cfg.Grammar.Compiled()),
		analyzer.WithAppFilter(apps),
		analyzer.WithLogger(logger),
	)
	return capture.NewSession(ch, cfg.Channel.Command,
		capture.WithAnalyzer(a),
		capture.WithLogger(logger),
	), nil
}

// reportOptions are the rendering and delivery flags shared by parse and
// capture.
type reportOptions struct {
	Output   string
	Language string
	Apps     []string
	Verbose  bool
	Quiet    bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

func addReportFlags(fs *pflag.FlagSet, opts *reportOptions) {
	fs.StringVarP(&opts.Output, "output", "o", "", "Output format (text|json)")
	fs.StringVar(&opts.Language, "lang", "", "Report language (zh|en)")
	fs.StringSliceVar(&opts.Apps, "app", nil, "Only report tracks of these application ids (can be repeated)")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "Show track ids and analysis metadata")
	fs.BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	fs.StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	fs.StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	fs.StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnTracks),
		"When to fire webhook (on_tracks|always|never)")
}

// formatter resolves the output flags against the config defaults.
func (o *reportOptions) formatter(cfg *config.Config) (output.Formatter, error) {
	format := cfg.Output.Format
	if o.Output != "" {
		format = o.Output
	}
	lang := cfg.Output.Language
	if o.Language != "" {
		if !output.IsLanguage(o.Language) {
			return nil, fmt.Errorf("unknown language %q (use %s)", o.Language, strings.Join(output.Languages(), " or "))
		}
		lang = o.Language
	}
	return output.NewFormatter(format, output.FormatOptions{
		Verbose:  o.Verbose,
		Quiet:    o.Quiet,
		Language: lang,
	})
}

// webhooks merges config file webhooks with the CLI webhook.
func (o *reportOptions) webhooks(cfg *config.Config) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if o.WebhookURL != "" {
		trigger := config.WebhookTrigger(o.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnTracks
		}
		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     o.WebhookURL,
			Token:   o.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}
	return webhooks
}

// sendWebhooks sends the report to every webhook whose trigger matches.
// Errors are printed to stderr but don't fail the command.
func sendWebhooks(ctx context.Context, w io.Writer, report *output.Report, hooks []config.WebhookConfig) {
	if len(hooks) == 0 {
		return
	}
	for _, resp := range webhook.NewClient().Dispatch(ctx, report, hooks) {
		if resp.Success() {
			fmt.Fprintf(w, "Webhook %s: sent (%d, %s)\n", resp.Name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(w, "Webhook %s: failed (%v)\n", resp.Name, resp.Error)
		}
	}
}

// setExitCode marks the run as "nothing playing" when report has no tracks
// or carries a channel failure.
func setExitCode(report *output.Report) {
	if !report.HasTracks() && ExitCode == 0 {
		ExitCode = 1
	}
}
