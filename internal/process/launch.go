package process

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync/atomic"
	"time"
)

// Describes a child process to launch.
type Command struct {
	Dir          string            // Working directory of the child. Empty uses the caller's directory.
	Env          map[string]string // Variables merged over the inherited environment.
	Args         []string          // Program and arguments. Args[0] is resolved against PATH.
	Stdin        bool              // Whether to connect a pipe to the child's standard input.
	DrainTimeout time.Duration     // Grace period for pipes to close after exit. Zero uses [DrainTimeout].
}

// A started child process.
//
// The handle owns the read ends of the child's stdout and stderr pipes and,
// if requested, the write end of its stdin pipe. It must be consumed exactly
// once, by [Handle.Relay] or [Handle.Wait]; both transfer ownership of the
// pipes and the wait capability to the relay goroutines.
type Handle struct {
	cmd      *exec.Cmd     // Started command.
	stdout   *os.File      // Read end of the stdout pipe.
	stderr   *os.File      // Read end of the stderr pipe.
	stdin    *os.File      // Write end of the stdin pipe, or nil.
	drain    time.Duration // Grace period passed to the exit waiter.
	consumed atomic.Bool   // Set once the handle has been relayed or waited.
}

// Starts the child process described by command.
//
// Standard output and standard error are always captured through pipes. The
// child's standard input is only connected when [Command.Stdin] is set,
// otherwise it reads from the null device. Cancelling ctx kills the child.
//
// Any failure to start the child, including a missing program, a program
// that is not executable and a working directory that does not exist, is
// returned wrapped in [ErrLaunch].
func Launch(ctx context.Context, command Command) (*Handle, error) {
	if len(command.Args) == 0 {
		return nil, fmt.Errorf("%w: empty argument vector", ErrLaunch)
	}

	cmd := exec.CommandContext(ctx, command.Args[0], command.Args[1:]...)
	cmd.Dir = command.Dir
	cmd.Env = mergeEnv(os.Environ(), command.Env)

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeFiles(stdoutR, stdoutW)
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	var stdinR, stdinW *os.File
	if command.Stdin {
		stdinR, stdinW, err = os.Pipe()
		if err != nil {
			closeFiles(stdoutR, stdoutW, stderrR, stderrW)
			return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
		}
		cmd.Stdin = stdinR
	}

	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		closeFiles(stdoutR, stdoutW, stderrR, stderrW, stdinR, stdinW)
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	// The child holds its own copies of these ends. Keeping ours open would
	// prevent the readers from ever seeing end-of-stream.
	closeFiles(stdoutW, stderrW, stdinR)

	drain := command.DrainTimeout
	if drain <= 0 {
		drain = DrainTimeout
	}

	return &Handle{
		cmd:    cmd,
		stdout: stdoutR,
		stderr: stderrR,
		stdin:  stdinW,
		drain:  drain,
	}, nil
}

// Returns the operating system process identifier of the child.
func (h *Handle) Pid() int {
	return h.cmd.Process.Pid
}

// Returns the write end of the child's standard input.
//
// Returns [ErrNoStdin] when the handle was launched without
// [Command.Stdin]. Closing the writer signals end-of-input to the child.
// The writer remains usable after the handle is relayed.
func (h *Handle) Stdin() (io.WriteCloser, error) {
	if h.stdin == nil {
		return nil, ErrNoStdin
	}
	return h.stdin, nil
}

// Waits for the child to exit and returns its exit status.
//
// Output written by the child is read and discarded so that the child never
// blocks on a full pipe. Consumes the handle.
func (h *Handle) Wait() (ExitStatus, error) {
	out, err := h.Relay(nil)
	if err != nil {
		return ExitStatus{}, err
	}
	return out.Drain().Status, nil
}

// Marks the handle as consumed. Returns false if it already was.
func (h *Handle) consume() bool {
	return h.consumed.CompareAndSwap(false, true)
}

// Merges override variables on top of a base environment slice.
//
// Entries of base keep their position; overridden keys are replaced in
// place and new keys are appended in sorted order. Malformed base entries
// without an equals sign are dropped.
func mergeEnv(base []string, overrides map[string]string) []string {
	merged := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))

	for _, entry := range base {
		k, _, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if v, override := overrides[k]; override {
			entry = k + "=" + v
			seen[k] = true
		}
		merged = append(merged, entry)
	}

	for _, k := range slices.Sorted(maps.Keys(overrides)) {
		if !seen[k] {
			merged = append(merged, k+"="+overrides[k])
		}
	}

	return merged
}

// Closes every non-nil file, ignoring errors.
func closeFiles(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			f.Close()
		}
	}
}
