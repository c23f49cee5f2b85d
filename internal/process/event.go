package process

import (
	"fmt"
	"os"
	"syscall"
)

// Identifies the origin of an [Event].
type Kind int

const (
	Stdout   Kind = iota // A line read from the child's standard output.
	Stderr               // A line read from the child's standard error.
	Terminal             // The child exited; [Event.Status] holds the result.
)

// Returns a short lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	case Terminal:
		return "exit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// A single item of an [Output] sequence.
type Event struct {
	Kind   Kind       // Origin of the event.
	Line   string     // Line text without the trailing newline. Empty for [Terminal].
	Status ExitStatus // Exit status. Only meaningful for [Terminal].
}

// Exit status of a child process.
type ExitStatus struct {
	Code   int    // Exit code, or -1 if the process was terminated by a signal.
	Signal string // Name of the terminating signal, if any.
}

// Whether the process exited normally with code zero.
func (s ExitStatus) Success() bool {
	return s.Code == 0 && s.Signal == ""
}

// Formats the status as "exit status N" or "signal: NAME".
func (s ExitStatus) String() string {
	if s.Signal != "" {
		return "signal: " + s.Signal
	}
	return fmt.Sprintf("exit status %d", s.Code)
}

// Derives an [ExitStatus] from a finished process.
func exitStatus(state *os.ProcessState) ExitStatus {
	if state == nil {
		return ExitStatus{Code: -1}
	}

	status := ExitStatus{Code: state.ExitCode()}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		status.Signal = ws.Signal().String()
	}
	return status
}
