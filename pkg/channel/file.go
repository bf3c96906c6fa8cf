package channel

import (
	"context"
	"fmt"
	"os"

	"github.com/tl/afv/pkg/parser"
)

// File replays a saved dump. The command is ignored.
type File struct {
	path string
}

// NewFile creates a replay channel for path ("-" reads stdin).
func NewFile(path string) *File {
	return &File{path: path}
}

// Name returns "file:<path>".
func (f *File) Name() string {
	return "file:" + f.path
}

// Open fails with ErrNotRunning when the dump cannot be read.
func (f *File) Open(_ context.Context) error {
	if f.path == parser.StdinPath {
		return nil
	}
	if _, err := os.Stat(f.path); err != nil {
		return fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	return nil
}

// Status reports whether the dump is readable.
func (f *File) Status(ctx context.Context) (Status, error) {
	if err := f.Open(ctx); err != nil {
		return Status{Detail: err.Error()}, nil
	}
	return Status{
		Running:    true,
		Authorized: true,
		Privilege:  PrivilegeUnknown,
		Detail:     f.path,
	}, nil
}

// Run returns the dump contents.
func (f *File) Run(ctx context.Context, _ string) (string, error) {
	raw, err := parser.ReadDump(ctx, f.path)
	if err != nil {
		return "", fmt.Errorf("replaying dump: %w", err)
	}
	return raw, nil
}

// Close is a no-op.
func (f *File) Close() error {
	return nil
}
