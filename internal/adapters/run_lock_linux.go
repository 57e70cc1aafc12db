//go:build linux

package adapters

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"bendis/internal/ports"
	"bendis/internal/types"
)

// RunLockAdapter serializes bendis runs on one workspace with a
// non-blocking exclusive flock. The kernel drops the lock when the process
// exits, so an orphaned lock file is harmless.
type RunLockAdapter struct{}

func NewRunLockAdapter() RunLockAdapter {
	return RunLockAdapter{}
}

type runLock struct {
	file *os.File
}

func (a RunLockAdapter) Acquire(path string) (ports.Releaser, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, types.NewError(types.ErrWorkspaceBusy, "failed to open run lock "+path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, types.NewError(types.ErrWorkspaceBusy, "another bendis run holds "+path, nil)
		}
		return nil, types.NewError(types.ErrWorkspaceBusy, "failed to lock "+path, err)
	}
	return &runLock{file: f}, nil
}

// Release is safe to call more than once.
func (l *runLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		log.Debug().Err(err).Msg("flock unlock failed")
	}
	if err := l.file.Close(); err != nil {
		log.Debug().Err(err).Msg("run lock close failed")
	}
	l.file = nil
}

var _ ports.RunLockPort = RunLockAdapter{}
