package channel

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// process is the captured outcome of one command.
type process struct {
	stdout   []byte
	stderr   []byte
	exitCode int
}

// execute runs name with args. A non-zero exit is not an error; failing to
// start is ErrNoProcess and cancellation returns the context error.
func execute(ctx context.Context, name string, args ...string) (*process, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- command comes from user config
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoProcess, err)
	}

	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("running %s: %w", name, ctxErr)
	}

	p := &process{stdout: stdout.Bytes(), stderr: stderr.Bytes()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		p.exitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
	return p, nil
}

// output joins stdout lines and "ERROR: "-prefixed stderr lines, each
// newline terminated.
func (p *process) output() string {
	var b strings.Builder
	writeLines(&b, p.stdout, "")
	writeLines(&b, p.stderr, "ERROR: ")
	return b.String()
}

func writeLines(b *strings.Builder, data []byte, prefix string) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		b.WriteString(prefix)
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
	}
}
