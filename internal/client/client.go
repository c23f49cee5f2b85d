package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/cruciblehq/cruxpkg/internal/process"
	"github.com/cruciblehq/cruxpkg/internal/protocol"
)

// Connection carrying a single request.
type conn struct {
	net.Conn
	reader *bufio.Reader
}

// Dials the daemon and sends a request.
//
// The connection is closed when ctx is cancelled.
func send(ctx context.Context, socket string, cmd protocol.Command, payload any) (*conn, func(), error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "unix", socket)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	stop := context.AfterFunc(ctx, func() { c.Close() })
	release := func() {
		stop()
		c.Close()
	}

	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		release()
		return nil, nil, err
	}
	if _, err := c.Write(append(data, '\n')); err != nil {
		release()
		return nil, nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	return &conn{Conn: c, reader: bufio.NewReader(c)}, release, nil
}

// Reads the next envelope. Returns [io.EOF] when the daemon closed the
// connection.
func (c *conn) next() (*protocol.Envelope, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) == 0 {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %w", ErrResponse, err)
	}

	env, _, err := protocol.Decode(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponse, err)
	}
	return env, nil
}

// Sends a request and reads its single response.
//
// Returns the payload of a [protocol.CmdOK] response. A [protocol.CmdError]
// response is returned as a [*RemoteError].
func call(ctx context.Context, socket string, cmd protocol.Command, payload any) (*protocol.Envelope, error) {
	c, release, err := send(ctx, socket, cmd, payload)
	if err != nil {
		return nil, err
	}
	defer release()

	env, err := c.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: connection closed", ErrResponse)
		}
		return nil, err
	}

	return expectOK(env)
}

// Converts an error envelope into a [*RemoteError].
func expectOK(env *protocol.Envelope) (*protocol.Envelope, error) {
	switch env.Command {
	case protocol.CmdOK:
		return env, nil
	case protocol.CmdError:
		result, err := protocol.DecodePayload[protocol.ErrorResult](env.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrResponse, err)
		}
		return nil, newRemoteError(result)
	}
	return nil, fmt.Errorf("%w: %s", ErrResponse, env.Command)
}

// Runs a build on the daemon.
//
// Each streamed event is passed to fn in arrival order, including the
// terminal event, whose status is also returned. Cancelling ctx closes the
// connection, which makes the daemon abandon the build. A daemon-side
// launch failure is returned as a [*RemoteError].
func Build(ctx context.Context, socket string, req protocol.BuildRequest, fn func(process.Event)) (process.ExitStatus, error) {
	failed := process.ExitStatus{Code: -1}

	c, release, err := send(ctx, socket, protocol.CmdBuild, &req)
	if err != nil {
		return failed, err
	}
	defer release()

	var (
		status process.ExitStatus
		exited bool
	)

	for {
		env, err := c.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return failed, ctx.Err()
			}
			return failed, err
		}

		if env.Command != protocol.CmdEvent {
			if _, err := expectOK(env); err != nil {
				return failed, err
			}
			continue
		}

		msg, err := protocol.DecodePayload[protocol.EventMessage](env.Payload)
		if err != nil {
			return failed, fmt.Errorf("%w: %w", ErrResponse, err)
		}

		ev, err := msg.Event()
		if err != nil {
			return failed, fmt.Errorf("%w: %w", ErrResponse, err)
		}

		if ev.Kind == process.Terminal {
			status, exited = ev.Status, true
		}
		fn(ev)
	}

	if !exited {
		return failed, ErrNoResult
	}
	return status, nil
}

// Runs a clean on the daemon.
//
// A failed clean is returned as a [*RemoteError] carrying the captured
// driver output.
func Clean(ctx context.Context, socket string, req protocol.CleanRequest) error {
	_, err := call(ctx, socket, protocol.CmdClean, &req)
	return err
}

// Returns the daemon's status.
func Status(ctx context.Context, socket string) (*protocol.StatusResult, error) {
	env, err := call(ctx, socket, protocol.CmdStatus, nil)
	if err != nil {
		return nil, err
	}

	result, err := protocol.DecodePayload[protocol.StatusResult](env.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponse, err)
	}
	return result, nil
}

// Asks the daemon to stop.
func Shutdown(ctx context.Context, socket string) error {
	_, err := call(ctx, socket, protocol.CmdShutdown, nil)
	return err
}
