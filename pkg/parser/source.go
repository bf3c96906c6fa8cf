package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// StdinPath names standard input as a dump source.
const StdinPath = "-"

// maxLineSize bounds a single dump line.
const maxLineSize = 1024 * 1024

// ReadDump reads a whole dump from path, or from stdin when path is "-".
func ReadDump(ctx context.Context, path string) (string, error) {
	if path == StdinPath {
		return ReadDumpFrom(ctx, os.Stdin, "stdin")
	}

	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return "", fmt.Errorf("opening dump %s: %w", path, err)
	}
	defer f.Close()

	return ReadDumpFrom(ctx, f, path)
}

// ReadDumpFrom reads r line by line, normalizing line endings to \n.
func ReadDumpFrom(ctx context.Context, r io.Reader, name string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var b strings.Builder
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		b.WriteString(strings.TrimSuffix(scanner.Text(), "\r"))
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}

	return b.String(), nil
}
