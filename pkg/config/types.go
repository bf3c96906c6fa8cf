// Package config provides configuration loading and validation for afv.
package config

import (
	"time"

	"github.com/tl/afv/pkg/parser"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Channel  ChannelConfig   `yaml:"channel"`
	Grammar  GrammarConfig   `yaml:"grammar,omitempty"`
	Output   OutputConfig    `yaml:"output,omitempty"`
	Server   ServerConfig    `yaml:"server,omitempty"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// ChannelMode selects how the diagnostic command is executed.
type ChannelMode string

const (
	// ChannelModeADB runs the command with `adb shell` against a device.
	ChannelModeADB ChannelMode = "adb"
	// ChannelModeLocal runs the command with `sh -c` on this host.
	ChannelModeLocal ChannelMode = "local"
	// ChannelModeFile replays a previously saved dump.
	ChannelModeFile ChannelMode = "file"
)

// ChannelConfig defines the privileged channel used to capture dumps.
type ChannelConfig struct {
	Mode ChannelMode `yaml:"mode"`

	// ADBPath is the adb executable. Defaults to "adb" from PATH.
	ADBPath string `yaml:"adb_path,omitempty"`

	// Serial selects the device when several are attached.
	Serial string `yaml:"serial,omitempty"`

	// Shell is the local shell used in local mode.
	Shell string `yaml:"shell,omitempty"`

	// File is the dump replayed in file mode.
	File string `yaml:"file,omitempty"`

	// Command is the diagnostic command to run.
	Command string `yaml:"command,omitempty"`

	// Timeout bounds a single capture.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// GrammarConfig overrides the dump markers and row grammars for vendor
// variants. Empty fields keep the AOSP defaults.
type GrammarConfig struct {
	Markers parser.Markers `yaml:"markers,omitempty"`

	// Row patterns use named groups: pid/app for clients, track/pid/rate
	// for tracks.
	ClientRow       string `yaml:"client_row,omitempty"`
	ActiveTrackRow  string `yaml:"active_track_row,omitempty"`
	RelaxedTrackRow string `yaml:"relaxed_track_row,omitempty"`

	// compiled is populated during validation.
	compiled *parser.Grammar
}

// Compiled returns the grammar built during validation.
func (g *GrammarConfig) Compiled() *parser.Grammar {
	if g.compiled == nil {
		return parser.DefaultGrammar()
	}
	return g.compiled
}

// OutputConfig controls report rendering defaults.
type OutputConfig struct {
	Format   string `yaml:"format,omitempty"`
	Language string `yaml:"language,omitempty"`
}

// ServerConfig configures `afv serve`.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnTracks fires only when active tracks were found (default).
	WebhookTriggerOnTracks WebhookTrigger = "on_tracks"
	// WebhookTriggerAlways fires after every capture, failures included.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_tracks" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
