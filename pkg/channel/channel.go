// Package channel runs the audio_flinger diagnostic command over a
// privileged channel: adb, a local root shell, or a saved dump.
package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tl/afv/pkg/config"
	"github.com/tl/afv/pkg/parser"
)

// Errors returned by channels. Acquire folds them into parser sentinels.
var (
	ErrNotRunning = errors.New("privileged channel not running")
	ErrNoProcess  = errors.New("could not create privileged process")
)

// Channel executes shell commands with elevated privileges.
type Channel interface {
	// Name identifies the channel in logs and reports.
	Name() string

	// Open checks that the channel is usable.
	Open(ctx context.Context) error

	// Status reports whether the channel is running and authorized.
	Status(ctx context.Context) (Status, error)

	// Run executes command and returns stdout lines followed by stderr
	// lines prefixed with "ERROR: ".
	Run(ctx context.Context, command string) (string, error)

	// Close releases channel resources.
	Close() error
}

// Privilege is the identity the channel executes as.
type Privilege string

const (
	PrivilegeUnknown Privilege = "Unknown"
	PrivilegeADB     Privilege = "ADB"
	PrivilegeRoot    Privilege = "Root"
)

// PrivilegeForUID maps a numeric uid to a privilege level.
func PrivilegeForUID(uid string) Privilege {
	switch uid {
	case "0":
		return PrivilegeRoot
	case "2000":
		return PrivilegeADB
	default:
		return PrivilegeUnknown
	}
}

// Status describes the state of a channel.
type Status struct {
	Running    bool      `json:"running"`
	Authorized bool      `json:"authorized"`
	Privilege  Privilege `json:"privilege,omitempty"`
	UID        string    `json:"uid,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

// Ready reports whether commands can be run.
func (s Status) Ready() bool {
	return s.Running && s.Authorized
}

func (s Status) String() string {
	switch {
	case !s.Running:
		if s.Detail != "" {
			return "not running (" + s.Detail + ")"
		}
		return "not running"
	case !s.Authorized:
		return "running - needs authorization"
	default:
		return fmt.Sprintf("running - authorized (%s)", s.Privilege)
	}
}

// Option configures a channel.
type Option func(*options)

type options struct {
	timeout time.Duration
	logger  *slog.Logger
}

// WithTimeout bounds every command run by the channel.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets the logger for command tracing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// withTimeout derives a context bounded by the configured timeout.
func (o options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}

// New creates the channel selected by cfg.
func New(cfg config.ChannelConfig, opts ...Option) (Channel, error) {
	if cfg.Timeout > 0 {
		opts = append([]Option{WithTimeout(cfg.Timeout)}, opts...)
	}

	switch cfg.Mode {
	case config.ChannelModeADB, "":
		return NewADB(cfg.ADBPath, cfg.Serial, opts...), nil
	case config.ChannelModeLocal:
		return NewLocal(cfg.Shell, opts...), nil
	case config.ChannelModeFile:
		if cfg.File == "" {
			return nil, errors.New("file channel requires a dump path")
		}
		return NewFile(cfg.File), nil
	default:
		return nil, fmt.Errorf("unknown channel mode %q", cfg.Mode)
	}
}

// Acquire runs command over ch and returns its output. Failures never
// surface as errors: they become the failure text the parser recognizes.
func Acquire(ctx context.Context, ch Channel, command string) string {
	if err := ch.Open(ctx); err != nil {
		return failureText(err)
	}
	out, err := ch.Run(ctx, command)
	if err != nil {
		return failureText(err)
	}
	return out
}

func failureText(err error) string {
	switch {
	case errors.Is(err, ErrNotRunning):
		return parser.SentinelNotRunning
	case errors.Is(err, ErrNoProcess):
		return parser.SentinelNoProcess
	default:
		return parser.SentinelExecError + ": " + err.Error()
	}
}
