package client

import (
	"errors"
	"fmt"

	"github.com/cruciblehq/cruxpkg/internal/protocol"
)

var (
	ErrConnect  = errors.New("failed to connect to daemon")
	ErrResponse = errors.New("unexpected response from daemon")
	ErrRemote   = errors.New("daemon reported an error")
	ErrNoResult = errors.New("build stream ended without an exit status")
)

// Error reported by the daemon.
//
// Failed cleans carry the captured driver output and exit code.
type RemoteError struct {
	Message string // Error message reported by the daemon.
	Stdout  string // Captured standard output, if any.
	Stderr  string // Captured standard error, if any.
	Code    *int   // Exit code of the failed driver, if any.
}

func newRemoteError(r *protocol.ErrorResult) *RemoteError {
	return &RemoteError{Message: r.Message, Stdout: r.Stdout, Stderr: r.Stderr, Code: r.Code}
}

// Returns the daemon's message.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRemote, e.Message)
}

// Returns [ErrRemote].
func (e *RemoteError) Unwrap() error {
	return ErrRemote
}
