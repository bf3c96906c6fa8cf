package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tl/afv/pkg/parser"
)

// Load reads and validates a configuration file. An empty path yields the
// validated defaults.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors, fills defaults and compiles
// the grammar.
func Validate(cfg *Config) error {
	if err := validateChannel(&cfg.Channel); err != nil {
		return fmt.Errorf("channel: %w", err)
	}

	if err := validateGrammar(&cfg.Grammar); err != nil {
		return fmt.Errorf("grammar: %w", err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateChannel(ch *ChannelConfig) error {
	if ch.Mode == "" {
		ch.Mode = ChannelModeADB
	}

	switch ch.Mode {
	case ChannelModeADB:
		if ch.ADBPath == "" {
			ch.ADBPath = DefaultADBPath
		}
	case ChannelModeLocal:
		if ch.Shell == "" {
			ch.Shell = DefaultShell
		}
	case ChannelModeFile:
		if ch.File == "" {
			return errors.New("file is required in file mode")
		}
	default:
		return fmt.Errorf("invalid mode %q (must be adb, local, or file)", ch.Mode)
	}

	if strings.TrimSpace(ch.Command) == "" {
		ch.Command = DefaultCommand
	}

	if ch.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", ch.Timeout)
	}
	if ch.Timeout == 0 {
		ch.Timeout = DefaultCaptureTimeout
	}

	return nil
}

func validateGrammar(gc *GrammarConfig) error {
	g := &parser.Grammar{
		Markers:         gc.Markers.WithDefaults(),
		ClientRow:       parser.ClientRow,
		ActiveTrackRow:  parser.ActiveTrackRow,
		RelaxedTrackRow: parser.RelaxedTrackRow,
	}

	var err error
	if gc.ClientRow != "" {
		g.ClientRow, err = parser.NewRowPattern("client_row", gc.ClientRow, parser.ClientRowGroups...)
		if err != nil {
			return err
		}
	}
	if gc.ActiveTrackRow != "" {
		g.ActiveTrackRow, err = parser.NewRowPattern("active_track_row", gc.ActiveTrackRow, parser.TrackRowGroups...)
		if err != nil {
			return err
		}
	}
	if gc.RelaxedTrackRow != "" {
		g.RelaxedTrackRow, err = parser.NewRowPattern("relaxed_track_row", gc.RelaxedTrackRow, parser.TrackRowGroups...)
		if err != nil {
			return err
		}
	}

	gc.compiled = g
	return nil
}

func validateOutput(out *OutputConfig) error {
	if out.Format == "" {
		out.Format = DefaultFormat
	}
	if out.Format != "text" && out.Format != "json" {
		return fmt.Errorf("invalid format %q (must be text or json)", out.Format)
	}

	if out.Language == "" {
		out.Language = DefaultLanguage
	}
	if out.Language != "zh" && out.Language != "en" {
		return fmt.Errorf("invalid language %q (must be zh or en)", out.Language)
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerOnTracks, WebhookTriggerAlways, WebhookTriggerNever:
		default:
			return fmt.Errorf("invalid trigger %q (must be on_tracks, always, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerOnTracks
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}

	return s
}
