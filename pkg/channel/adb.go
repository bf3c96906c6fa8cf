package channel

import (
	"context"
	"fmt"
	"strings"
)

// ADB runs commands through `adb shell` on an attached device.
type ADB struct {
	path   string
	serial string
	opts   options
}

// NewADB creates an adb channel. An empty serial lets adb pick the device.
func NewADB(path, serial string, opts ...Option) *ADB {
	if path == "" {
		path = "adb"
	}
	return &ADB{path: path, serial: serial, opts: newOptions(opts)}
}

// Name returns "adb" or "adb:<serial>".
func (a *ADB) Name() string {
	if a.serial == "" {
		return "adb"
	}
	return "adb:" + a.serial
}

func (a *ADB) args(rest ...string) []string {
	if a.serial == "" {
		return rest
	}
	return append([]string{"-s", a.serial}, rest...)
}

// Open fails with ErrNotRunning unless the device is online and authorized.
func (a *ADB) Open(ctx context.Context) error {
	state, err := a.state(ctx)
	if err != nil {
		return err
	}
	if state != "device" {
		return fmt.Errorf("%w: device %s", ErrNotRunning, state)
	}
	return nil
}

// Status reports the device state and, when authorized, the shell uid.
func (a *ADB) Status(ctx context.Context) (Status, error) {
	state, err := a.state(ctx)
	if err != nil {
		return Status{Detail: err.Error()}, err
	}

	st := Status{
		Running:    state == "device" || state == "unauthorized",
		Authorized: state == "device",
		Privilege:  PrivilegeUnknown,
		Detail:     state,
	}
	if !st.Authorized {
		return st, nil
	}

	ctx, cancel := a.opts.withTimeout(ctx)
	defer cancel()
	p, err := execute(ctx, a.path, a.args("shell", "id", "-u")...)
	if err != nil {
		return st, err
	}
	st.UID = strings.TrimSpace(string(p.stdout))
	st.Privilege = PrivilegeForUID(st.UID)
	return st, nil
}

// Run executes command with `adb shell`.
func (a *ADB) Run(ctx context.Context, command string) (string, error) {
	ctx, cancel := a.opts.withTimeout(ctx)
	defer cancel()

	a.opts.logger.Debug("running command", "channel", a.Name(), "command", command)
	p, err := execute(ctx, a.path, a.args("shell", command)...)
	if err != nil {
		return "", err
	}
	return p.output(), nil
}

// Close is a no-op; adb keeps no per-channel state.
func (a *ADB) Close() error {
	return nil
}

// state returns the `adb get-state` result: device, unauthorized, offline
// or missing.
func (a *ADB) state(ctx context.Context) (string, error) {
	ctx, cancel := a.opts.withTimeout(ctx)
	defer cancel()

	p, err := execute(ctx, a.path, a.args("get-state")...)
	if err != nil {
		return "", err
	}
	return parseState(string(p.stdout), string(p.stderr)), nil
}

// parseState reads the device state from get-state output. adb reports
// unusable devices on stderr with a non-zero exit.
func parseState(stdout, stderr string) string {
	if s := strings.TrimSpace(stdout); s != "" {
		return s
	}
	msg := strings.ToLower(stderr)
	switch {
	case strings.Contains(msg, "unauthorized"):
		return "unauthorized"
	case strings.Contains(msg, "offline"):
		return "offline"
	case strings.Contains(msg, "no devices"), strings.Contains(msg, "not found"):
		return "missing"
	default:
		return "unknown"
	}
}
