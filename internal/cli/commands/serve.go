package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/tl/afv/internal/server"
	"github.com/tl/afv/pkg/analyzer"
	"github.com/tl/afv/pkg/capture"
	"github.com/tl/afv/pkg/channel"
	"github.com/tl/afv/pkg/metrics"
)

// ServeOptions holds command-line options for the serve command.
type ServeOptions struct {
	channel  channelOptions
	Addr     string
	Language string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve snapshots over HTTP and websocket",
		Long: `Serve audio snapshots for dashboards and automation.

Endpoints:
  GET  /api/snapshot  capture over the channel and report (?format=text&lang=en)
  POST /api/parse     parse a dump sent as the request body (?source=name)
  GET  /api/status    channel status
  GET  /metrics       Prometheus metrics
  GET  /ws            websocket; one reply per {"type":"capture|parse|status"} request

Configured webhooks fire after every /api/snapshot capture.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	addChannelFlags(cmd.Flags(), &opts.channel)
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config, 127.0.0.1:9477)")
	cmd.Flags().StringVar(&opts.Language, "lang", "", "Default language for text reports (zh|en)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
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

	addr := cfg.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	lang := cfg.Output.Language
	if opts.Language != "" {
		lang = opts.Language
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ch, err := channel.New(cfg.Channel, channel.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating channel: %w", err)
	}
	defer ch.Close()

	session := capture.NewSession(ch, cfg.Channel.Command,
		capture.WithAnalyzer(analyzer.NewAnalyzer(
			analyzer.WithGrammar(cfg.Grammar.Compiled()),
			analyzer.WithLogger(logger),
		)),
		capture.WithMetrics(metrics.NewPromMetrics(reg)),
		capture.WithLogger(logger),
	)

	srv := server.New(session, server.Options{
		Gatherer: reg,
		Webhooks: cfg.Webhooks,
		Language: lang,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "afv serving %s on http://%s\n", ch.Name(), addr)
	return srv.Run(ctx, addr)
}
