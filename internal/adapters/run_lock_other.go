//go:build !linux

package adapters

import (
	"errors"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"

	"bendis/internal/ports"
	"bendis/internal/types"
)

// RunLockAdapter falls back to exclusive creation of the lock file where
// flock is unavailable. A crashed run leaves the file behind and it has to
// be removed by hand.
type RunLockAdapter struct{}

func NewRunLockAdapter() RunLockAdapter {
	return RunLockAdapter{}
}

type runLock struct {
	path string
}

func (a RunLockAdapter) Acquire(path string) (ports.Releaser, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil, types.NewError(types.ErrWorkspaceBusy, "another bendis run holds "+path+" (remove it if no run is active)", nil)
	}
	if err != nil {
		return nil, types.NewError(types.ErrWorkspaceBusy, "failed to create run lock "+path, err)
	}
	_ = f.Close()
	return &runLock{path: path}, nil
}

func (l *runLock) Release() {
	if l == nil || l.path == "" {
		return
	}
	if err := os.Remove(l.path); err != nil {
		log.Debug().Err(err).Msg("run lock removal failed")
	}
	l.path = ""
}

var _ ports.RunLockPort = RunLockAdapter{}
