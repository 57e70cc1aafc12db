package ports

import (
	"context"
	"io"
)

// ResolverPort drives the external dependency resolver as a subprocess.
// The working directory is always passed explicitly.
type ResolverPort interface {
	// Update runs "<resolver> update" in dir.
	Update(ctx context.Context, dir string) error

	// Passthrough forwards args verbatim and reports the resolver's exit
	// code. A non-nil error means the resolver could not be started.
	Passthrough(ctx context.Context, dir string, args []string, stdio Stdio) (int, error)
}

type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}
