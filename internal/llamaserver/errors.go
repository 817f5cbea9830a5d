package llamaserver

import "errors"

// dependencyUnavailableError signals a missing external dependency
// (the llama-server binary) so callers can report it distinctly.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var de dependencyUnavailableError
	return errors.As(err, &de)
}

// spawnError reports a runtime that failed before becoming ready.
type spawnError struct {
	model  string
	reason string
	tail   string
	err    error
}

func (e *spawnError) Error() string {
	msg := "llama-server for " + e.model + " " + e.reason
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	if e.tail != "" {
		msg += "; stderr tail: " + e.tail
	}
	return msg
}

func (e *spawnError) Unwrap() error { return e.err }

// IsSpawnFailure reports whether err indicates a runtime that exited or timed
// out before it became ready.
func IsSpawnFailure(err error) bool {
	var se *spawnError
	return errors.As(err, &se)
}

// ErrRuntimeExited is wrapped by errors reporting a runtime that exited while
// the front was serving.
var ErrRuntimeExited = errors.New("runtime exited")

type exitError struct {
	model string
	tail  string
	err   error
}

func (e *exitError) Error() string {
	msg := "llama-server for " + e.model + " exited while serving"
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	if e.tail != "" {
		msg += "; stderr tail: " + e.tail
	}
	return msg
}

func (e *exitError) Is(target error) bool { return target == ErrRuntimeExited }

func (e *exitError) Unwrap() error { return e.err }
