package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cruciblehq/cruxpkg/internal/builder"
	"github.com/cruciblehq/cruxpkg/internal/client"
	"github.com/cruciblehq/cruxpkg/internal/protocol"
)

// Represents the 'cruxpkg clean' command.
type CleanCmd struct {
	Dir     string   `short:"C" default:"." type:"existingdir" help:"Directory the targets were built in."`
	Env     string   `short:"e" required:"" help:"Rendered environment the targets are defined in." placeholder:"PATH"`
	Daemon  bool     `help:"Run the clean through the daemon."`
	Targets []string `arg:"" optional:"" help:"Targets to clean. Cleans everything when empty."`
}

// Executes the clean command.
//
// The driver output is only shown when the clean fails.
func (c *CleanCmd) Run(ctx context.Context) error {
	dir, err := filepath.Abs(c.Dir)
	if err != nil {
		return err
	}

	if c.Daemon {
		err := client.Clean(ctx, socketPath(), protocol.CleanRequest{BaseDir: dir, EnvContext: c.Env, Targets: c.Targets})

		var remote *client.RemoteError
		if errors.As(err, &remote) {
			fmt.Fprint(os.Stderr, remote.Stdout, remote.Stderr)
		}
		return err
	}

	b, err := newBuilder()
	if err != nil {
		return err
	}

	err = b.Clean(ctx, dir, c.Env, c.Targets)

	var cleanErr *builder.CleanError
	if errors.As(err, &cleanErr) {
		fmt.Fprint(os.Stderr, cleanErr.Stdout, cleanErr.Stderr)
	}
	return err
}
