package channel

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Local runs commands with `sh -c` on this host, e.g. a root shell or
// Termux on the device itself.
type Local struct {
	shell string
	opts  options
}

// NewLocal creates a local shell channel.
func NewLocal(shell string, opts ...Option) *Local {
	if shell == "" {
		shell = "sh"
	}
	return &Local{shell: shell, opts: newOptions(opts)}
}

// Name returns "local".
func (l *Local) Name() string {
	return "local"
}

// Open fails with ErrNoProcess when the shell cannot be found.
func (l *Local) Open(_ context.Context) error {
	if _, err := exec.LookPath(l.shell); err != nil {
		return fmt.Errorf("%w: %v", ErrNoProcess, err)
	}
	return nil
}

// Status reports the uid of this process.
func (l *Local) Status(ctx context.Context) (Status, error) {
	if err := l.Open(ctx); err != nil {
		return Status{Detail: err.Error()}, nil
	}
	uid := strconv.Itoa(os.Getuid())
	return Status{
		Running:    true,
		Authorized: true,
		UID:        uid,
		Privilege:  PrivilegeForUID(uid),
		Detail:     l.shell,
	}, nil
}

// Run executes command with the local shell.
func (l *Local) Run(ctx context.Context, command string) (string, error) {
	ctx, cancel := l.opts.withTimeout(ctx)
	defer cancel()

	l.opts.logger.Debug("running command", "channel", l.Name(), "command", command)
	p, err := execute(ctx, l.shell, "-c", command)
	if err != nil {
		return "", err
	}
	return p.output(), nil
}

// Close is a no-op.
func (l *Local) Close() error {
	return nil
}
