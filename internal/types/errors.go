package types

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

type ErrorKind string

const (
	ErrInitConflict              ErrorKind = "InitConflict"
	ErrMalformedManifest         ErrorKind = "MalformedManifest"
	ErrUnknownOverrideTarget     ErrorKind = "UnknownOverrideTarget"
	ErrResolutionFailure         ErrorKind = "ResolutionFailure"
	ErrPathDependencyOutsideRoot ErrorKind = "PathDependencyOutsideRoot"
	ErrGitignoreConflict         ErrorKind = "GitignoreConflict"
	ErrNotInitialized            ErrorKind = "NotInitialized"
	ErrWorkspaceBusy             ErrorKind = "WorkspaceBusy"
)

var kindCodes = map[ErrorKind]errbuilder.ErrCode{
	ErrInitConflict:              errbuilder.CodeAlreadyExists,
	ErrMalformedManifest:         errbuilder.CodeInvalidArgument,
	ErrUnknownOverrideTarget:     errbuilder.CodeInvalidArgument,
	ErrResolutionFailure:         errbuilder.CodeFailedPrecondition,
	ErrPathDependencyOutsideRoot: errbuilder.CodeNotFound,
	ErrGitignoreConflict:         errbuilder.CodeFailedPrecondition,
	ErrNotInitialized:            errbuilder.CodeNotFound,
	ErrWorkspaceBusy:             errbuilder.CodeFailedPrecondition,
}

// KindError tags a coded error with its place in the domain taxonomy.
type KindError struct {
	Kind ErrorKind
	Err  error
}

func (e *KindError) Error() string {
	return e.Err.Error()
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// NewError builds a taxonomy error carrying the errbuilder code that
// belongs to kind.
func NewError(kind ErrorKind, msg string, cause error) error {
	code, ok := kindCodes[kind]
	if !ok {
		code = errbuilder.CodeInternal
	}
	if cause == nil {
		return &KindError{Kind: kind, Err: errbuilder.New().
			WithCode(code).
			WithMsg(msg)}
	}
	return &KindError{Kind: kind, Err: errbuilder.New().
		WithCode(code).
		WithMsg(msg).
		WithCause(cause)}
}

// KindOf returns the taxonomy kind of err, looking through wrappers.
func KindOf(err error) (ErrorKind, bool) {
	var kindErr *KindError
	if errors.As(err, &kindErr) {
		return kindErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}

// SyncStep identifies a stage of the update pipeline.
type SyncStep int

const (
	StepPrepare SyncStep = iota
	StepResolveStaging
	StepBuildResolved
	StepWriteDerived
	StepResolveRoot
	StepGitignore
	StepCleanup
)

var syncStepNames = map[SyncStep]string{
	StepPrepare:        "prepare",
	StepResolveStaging: "resolve-staging",
	StepBuildResolved:  "build-resolved-set",
	StepWriteDerived:   "write-derived",
	StepResolveRoot:    "resolve-root",
	StepGitignore:      "gitignore",
	StepCleanup:        "cleanup",
}

func (s SyncStep) String() string {
	if name, ok := syncStepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step-%d", int(s))
}

// SyncError reports the pipeline step that failed.
type SyncError struct {
	Step  SyncStep
	Cause error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("update failed at step %d (%s): %v", int(e.Step), e.Step, e.Cause)
}

func (e *SyncError) Unwrap() error {
	return e.Cause
}

// StepOf returns the failed step when err is a SyncError.
func StepOf(err error) (SyncStep, bool) {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Step, true
	}
	return 0, false
}
