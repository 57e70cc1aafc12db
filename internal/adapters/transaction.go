package adapters

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"bendis/internal/ports"
)

// FileTransactionAdapter replaces files by rename and keeps the previous
// content as a backup until the transaction finishes.
type FileTransactionAdapter struct{}

func NewFileTransactionAdapter() FileTransactionAdapter {
	return FileTransactionAdapter{}
}

func (a FileTransactionAdapter) Begin() ports.Transaction {
	return &fileTransaction{}
}

type stagedFile struct {
	path string
	data []byte
}

type journalEntry struct {
	path    string
	existed bool
}

type fileTransaction struct {
	staged  []stagedFile
	journal []journalEntry
	changed []string
}

func (t *fileTransaction) Stage(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create directory for " + path).
			WithCause(err)
	}
	if err := writeTemp(path, data); err != nil {
		return err
	}
	t.staged = append(t.staged, stagedFile{path: path, data: data})
	return nil
}

func (t *fileTransaction) Protect(path string) error {
	if t.journaled(path) {
		return nil
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		t.journal = append(t.journal, journalEntry{path: path})
		return nil
	case err != nil:
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read " + path).
			WithCause(err)
	}
	if err := os.WriteFile(path+backupSuffix, data, 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to back up " + path).
			WithCause(err)
	}
	t.journal = append(t.journal, journalEntry{path: path, existed: true})
	return nil
}

func (t *fileTransaction) Commit() error {
	for len(t.staged) > 0 {
		file := t.staged[0]
		previous, err := os.ReadFile(file.path)
		existed := err == nil
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read " + file.path).
				WithCause(err)
		}
		if existed {
			if err := os.Rename(file.path, file.path+backupSuffix); err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to back up " + file.path).
					WithCause(err)
			}
		}
		t.journal = append(t.journal, journalEntry{path: file.path, existed: existed})
		if err := os.Rename(file.path+tempSuffix, file.path); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to replace " + file.path).
				WithCause(err)
		}
		if !existed || !bytes.Equal(previous, file.data) {
			t.changed = append(t.changed, file.path)
		}
		t.staged = t.staged[1:]
	}
	return nil
}

func (t *fileTransaction) Rollback() error {
	var errs []error
	for _, file := range t.staged {
		if err := os.Remove(file.path + tempSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	t.staged = nil
	for i := len(t.journal) - 1; i >= 0; i-- {
		entry := t.journal[i]
		if entry.existed {
			if err := os.Rename(entry.path+backupSuffix, entry.path); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if err := os.Remove(entry.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	t.journal = nil
	t.changed = nil
	if len(errs) > 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to restore previous files").
			WithCause(errors.Join(errs...))
	}
	return nil
}

func (t *fileTransaction) Finish() error {
	var errs []error
	for _, entry := range t.journal {
		if !entry.existed {
			continue
		}
		if err := os.Remove(entry.path + backupSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	t.journal = nil
	if len(errs) > 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove backups").
			WithCause(errors.Join(errs...))
	}
	return nil
}

func (t *fileTransaction) Changed() []string {
	out := append([]string(nil), t.changed...)
	sort.Strings(out)
	return out
}

func (t *fileTransaction) journaled(path string) bool {
	for _, entry := range t.journal {
		if entry.path == path {
			return true
		}
	}
	return false
}

var _ ports.TransactionPort = FileTransactionAdapter{}
