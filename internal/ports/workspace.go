package ports

import "bendis/internal/types"

// WorkspacePort performs the filesystem operations of a sync run on the
// project root and the staging directory.
type WorkspacePort interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	// WriteFileAtomic writes via a temporary sibling and a rename.
	WriteFileAtomic(path string, data []byte) error
	EnsureDir(path string) error
	RemoveAll(path string) error
	Rename(from string, to string) error

	// LinkMirror makes linkPath a relative symlink to target. It reports
	// false when linkPath already exists and is not a symlink.
	LinkMirror(linkPath string, target string) (bool, error)
	// RemoveMirror deletes linkPath only when it is a symlink.
	RemoveMirror(linkPath string) error

	// StaleArtifacts lists leftovers of an interrupted run in dirs.
	StaleArtifacts(dirs ...string) ([]string, error)
}

// TransactionPort groups file replacements so they become visible
// together and can be undone as a unit.
type TransactionPort interface {
	Begin() Transaction
}

type Transaction interface {
	// Stage writes data next to path without touching path itself.
	Stage(path string, data []byte) error
	// Protect records the current content of a file a later step will
	// rewrite outside the transaction, so Rollback can restore it.
	Protect(path string) error
	// Commit moves every staged file into place, keeping backups.
	Commit() error
	// Rollback restores every committed or protected file.
	Rollback() error
	// Finish discards backups after a successful run.
	Finish() error
	// Changed lists the committed paths whose content differs from before.
	Changed() []string
}

// RunLockPort provides exclusive access to a workspace.
type RunLockPort interface {
	Acquire(path string) (Releaser, error)
}

type Releaser interface {
	Release()
}

// ConfigPort reads and writes the TOML settings file.
type ConfigPort interface {
	Write(path string, settings types.Settings) error
	Read(path string) (types.Settings, error)
}
