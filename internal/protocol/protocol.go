package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/cruciblehq/cruxpkg/internal/process"
)

// Name of a request or response.
type Command string

const (
	CmdBuild    Command = "build"    // Run the build driver and stream its output.
	CmdClean    Command = "clean"    // Run the clean driver.
	CmdStatus   Command = "status"   // Report daemon status.
	CmdShutdown Command = "shutdown" // Stop the daemon.
	CmdEvent    Command = "event"    // A single output event of a streamed build.
	CmdOK       Command = "ok"       // Successful response.
	CmdError    Command = "error"    // Failed response.
)

// Message frame exchanged over the socket.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Targets of a build request.
type BuildRequest struct {
	BaseDir    string   `json:"base_dir"`
	EnvContext string   `json:"env_context"`
	Targets    []string `json:"targets,omitempty"`
}

// Targets of a clean request.
type CleanRequest struct {
	BaseDir    string   `json:"base_dir"`
	EnvContext string   `json:"env_context"`
	Targets    []string `json:"targets,omitempty"`
}

// Output event of a streamed build.
type EventMessage struct {
	Session string `json:"session"`
	Kind    string `json:"kind"`
	Line    string `json:"line,omitempty"`
	Code    int    `json:"code,omitempty"`
	Signal  string `json:"signal,omitempty"`
}

// Payload of a [CmdError] response.
//
// Failed cleans carry the captured driver output and exit code.
type ErrorResult struct {
	Message string `json:"message"`
	Stdout  string `json:"stdout,omitempty"`
	Stderr  string `json:"stderr,omitempty"`
	Code    *int   `json:"code,omitempty"`
}

// Payload of a [CmdOK] response to a status request.
type StatusResult struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
	Pid     int    `json:"pid"`
	Uptime  string `json:"uptime"`
	Builds  int    `json:"builds"`
	Cleans  int    `json:"cleans"`
	Active  int    `json:"active"`
}

// Encodes a command and payload into an envelope.
//
// A nil payload produces an envelope without one. The result carries no
// trailing newline.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncode, err)
		}
		env.Payload = raw
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return data, nil
}

// Decodes an envelope, returning it with its raw payload.
func Decode(data []byte) (*Envelope, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if env.Command == "" {
		return nil, nil, fmt.Errorf("%w: missing command", ErrDecode)
	}
	return &env, env.Payload, nil
}

// Decodes a payload into a value of type T.
//
// An empty payload decodes to the zero value.
func DecodePayload[T any](payload json.RawMessage) (*T, error) {
	var v T
	if len(payload) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &v, nil
}

// Converts an output event into its wire form.
func NewEventMessage(session string, ev process.Event) EventMessage {
	msg := EventMessage{Session: session, Kind: ev.Kind.String(), Line: ev.Line}
	if ev.Kind == process.Terminal {
		msg.Code = ev.Status.Code
		msg.Signal = ev.Status.Signal
		msg.Line = ""
	}
	return msg
}

// Converts the message back into an output event.
//
// Returns [ErrDecode] for an unknown kind.
func (m EventMessage) Event() (process.Event, error) {
	switch m.Kind {
	case process.Stdout.String():
		return process.Event{Kind: process.Stdout, Line: m.Line}, nil
	case process.Stderr.String():
		return process.Event{Kind: process.Stderr, Line: m.Line}, nil
	case process.Terminal.String():
		return process.Event{
			Kind:   process.Terminal,
			Status: process.ExitStatus{Code: m.Code, Signal: m.Signal},
		}, nil
	}
	return process.Event{}, fmt.Errorf("%w: unknown event kind %q", ErrDecode, m.Kind)
}
