package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultCommand        = "dumpsys media.audio_flinger"
	DefaultADBPath        = "adb"
	DefaultShell          = "sh"
	DefaultCaptureTimeout = 30 * time.Second
	DefaultWebhookTimeout = 10 * time.Second
	DefaultServerAddr     = "127.0.0.1:9477"
	DefaultFormat         = "text"
	DefaultLanguage       = "zh"
)

// Environment variable names.
const (
	EnvChannelMode   = "AFV_CHANNEL_MODE"
	EnvADBSerial     = "AFV_ADB_SERIAL"
	EnvAndroidSerial = "ANDROID_SERIAL"
	EnvLanguage      = "AFV_LANG"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Channel: ChannelConfig{
			Mode:    ChannelModeADB,
			ADBPath: DefaultADBPath,
			Shell:   DefaultShell,
			Command: DefaultCommand,
			Timeout: DefaultCaptureTimeout,
		},
		Output: OutputConfig{
			Format:   DefaultFormat,
			Language: DefaultLanguage,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if mode := os.Getenv(EnvChannelMode); mode != "" {
		c.Channel.Mode = ChannelMode(mode)
	}

	if serial := os.Getenv(EnvADBSerial); serial != "" {
		c.Channel.Serial = serial
	} else if c.Channel.Serial == "" {
		c.Channel.Serial = os.Getenv(EnvAndroidSerial)
	}

	if lang := os.Getenv(EnvLanguage); lang != "" {
		c.Output.Language = lang
	}
}
