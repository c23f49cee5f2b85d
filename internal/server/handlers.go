package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/cruciblehq/cruxpkg/internal"
	"github.com/cruciblehq/cruxpkg/internal/builder"
	"github.com/cruciblehq/cruxpkg/internal/protocol"
)

// Handles a build command.
//
// Starts the build and streams every output event to the client as it
// arrives, ending with the terminal event. A launch failure is answered
// with a single error envelope. When the client goes away the build
// context is cancelled, which kills the driver, and the output sequence
// is abandoned.
func (s *Server) handleBuild(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.BuildRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	session := uuid.NewString()
	logger := slog.With("session", session)

	output, err := s.builder.Build(ctx, req.BaseDir, req.EnvContext, req.Targets)
	if err != nil {
		logger.Warn("build failed to start", "error", err)
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}
	defer output.Close()

	s.mu.Lock()
	s.builds++
	s.active++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	logger.Info("build started", "dir", req.BaseDir, "targets", req.Targets)

	for ev := range output.All() {
		if err := s.respond(conn, protocol.CmdEvent, protocol.NewEventMessage(session, ev)); err != nil {
			logger.Warn("client went away, abandoning build", "error", err)
			return
		}
	}

	logger.Info("build finished")
}

// Handles a clean command.
//
// A failing clean is answered with the captured driver output.
func (s *Server) handleClean(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.CleanRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.mu.Lock()
	s.cleans++
	s.mu.Unlock()

	if err := s.builder.Clean(ctx, req.BaseDir, req.EnvContext, req.Targets); err != nil {
		result := &protocol.ErrorResult{Message: err.Error()}

		var cleanErr *builder.CleanError
		if errors.As(err, &cleanErr) {
			code := cleanErr.Status.Code
			result.Stdout = cleanErr.Stdout
			result.Stderr = cleanErr.Stderr
			result.Code = &code
		}

		s.respond(conn, protocol.CmdError, result)
		return
	}

	s.respond(conn, protocol.CmdOK, nil)
}

// Handles a status command.
func (s *Server) handleStatus(conn net.Conn) {
	s.mu.Lock()
	builds, cleans, active := s.builds, s.cleans, s.active
	s.mu.Unlock()

	uptime := time.Since(s.startedAt).Truncate(time.Second)

	s.respond(conn, protocol.CmdOK, &protocol.StatusResult{
		Running: true,
		Version: internal.VersionString(),
		Pid:     os.Getpid(),
		Uptime:  uptime.String(),
		Builds:  builds,
		Cleans:  cleans,
		Active:  active,
	})
}

// Handles a shutdown command.
func (s *Server) handleShutdown(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	go func() {
		s.Stop()
	}()
}
