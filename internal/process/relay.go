package process

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (

	// Capacity of the channel between the relay goroutines and the consumer.
	EventBuffer = 64

	// Default time the exit waiter gives the pipe readers to reach
	// end-of-stream after the child has exited.
	DrainTimeout = 2 * time.Second
)

// Starts relaying the child's output into a new [Output] sequence.
//
// Three goroutines are started: one reader per pipe and one exit waiter.
// The call returns immediately. Undecodable lines are logged to logger and
// skipped. A nil logger uses [slog.Default]. Consumes the handle; a second
// call returns [ErrConsumed].
func (h *Handle) Relay(logger *slog.Logger) (*Output, error) {
	if !h.consume() {
		return nil, ErrConsumed
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("pid", h.Pid())
	logger.Debug("process started", "args", h.cmd.Args, "dir", h.cmd.Dir)

	o := newOutput(EventBuffer)

	var readers, producers sync.WaitGroup
	readers.Add(2)
	producers.Add(3)

	go func() {
		defer producers.Done()
		defer readers.Done()
		o.readLines(h.stdout, Stdout, logger)
	}()

	go func() {
		defer producers.Done()
		defer readers.Done()
		o.readLines(h.stderr, Stderr, logger)
	}()

	go func() {
		defer producers.Done()
		o.awaitExit(h.cmd, &readers, h.drain, logger)
	}()

	// The channel is closed only after every producer is gone, so the
	// consumer sees the end of the sequence after the terminal event.
	go func() {
		producers.Wait()
		close(o.events)
		close(o.done)
	}()

	return o, nil
}

// Reads lines from f and forwards them as events of the given kind.
//
// Stops at end-of-stream, on a read error, or when the consumer abandons the
// sequence. The pipe is closed on return, so a child that keeps writing to an
// abandoned sequence receives EPIPE instead of blocking.
func (o *Output) readLines(f *os.File, kind Kind, logger *slog.Logger) {
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")

			if !utf8.ValidString(line) {
				logger.Warn("skipping undecodable output line", "stream", kind.String())
			} else if !o.send(Event{Kind: kind, Line: line}) {
				return
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				logger.Warn("failed to read output", "stream", kind.String(), "error", err)
			}
			return
		}
	}
}

// Waits for the child to exit and sends the terminal event.
//
// After the child is reaped, the readers are given up to drain to reach
// end-of-stream so that the terminal event follows the last line. If a
// descendant still holds a pipe open when the grace period ends, the
// terminal event is sent regardless.
func (o *Output) awaitExit(cmd *exec.Cmd, readers *sync.WaitGroup, drain time.Duration, logger *slog.Logger) {
	err := cmd.Wait()

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		logger.Warn("failed to wait for process", "error", err)
	}

	status := exitStatus(cmd.ProcessState)

	drained := make(chan struct{})
	go func() {
		readers.Wait()
		close(drained)
	}()

	timer := time.NewTimer(drain)
	defer timer.Stop()

	select {
	case <-drained:
	case <-o.abandoned:
		return
	case <-timer.C:
		logger.Warn("output still open after process exit", "drain", drain)
	}

	logger.Debug("process exited", "status", status.String())

	o.send(Event{Kind: Terminal, Status: status})
}
