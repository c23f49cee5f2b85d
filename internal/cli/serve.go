package cli

import (
	"context"
	"log/slog"

	"github.com/cruciblehq/cruxpkg/internal/server"
)

// Represents the 'cruxpkg serve' command.
type ServeCmd struct {
	PIDFile string `name:"pid-file" help:"Override the default PID file path." placeholder:"PATH"`
}

// Executes the serve command.
//
// Starts the daemon on a Unix domain socket and blocks until the context
// is cancelled (e.g. via SIGINT or SIGTERM) or a shutdown is requested.
func (c *ServeCmd) Run(ctx context.Context) error {
	b, err := newBuilder()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		SocketPath: RootCmd.Socket,
		PIDFile:    c.PIDFile,
		Builder:    b,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("cruxpkg daemon is running")

	select {
	case <-ctx.Done():
	case <-srv.Done():
	}

	slog.Info("shutting down")
	return srv.Stop()
}
