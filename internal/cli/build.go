package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/cruxpkg/internal/client"
	"github.com/cruciblehq/cruxpkg/internal/process"
	"github.com/cruciblehq/cruxpkg/internal/protocol"
)

// Represents the 'cruxpkg build' command.
type BuildCmd struct {
	Dir     string   `short:"C" default:"." type:"existingdir" help:"Directory to build in."`
	Env     string   `short:"e" required:"" help:"Rendered environment the targets are defined in." placeholder:"PATH"`
	Daemon  bool     `help:"Run the build through the daemon."`
	Targets []string `arg:"" optional:"" help:"Targets to build. Builds everything when empty."`
}

// Executes the build command.
//
// Output lines are printed as the driver produces them, stdout to stdout
// and stderr to stderr. A non-zero exit of the driver is reported as
// [ErrBuildFailed].
func (c *BuildCmd) Run(ctx context.Context) error {
	dir, err := filepath.Abs(c.Dir)
	if err != nil {
		return err
	}

	p := newPrinter(os.Stdout, os.Stderr)

	if c.Daemon {
		req := protocol.BuildRequest{BaseDir: dir, EnvContext: c.Env, Targets: c.Targets}
		if _, err := client.Build(ctx, socketPath(), req, p.print); err != nil {
			return err
		}
		return p.result()
	}

	b, err := newBuilder()
	if err != nil {
		return err
	}

	out, err := b.Build(ctx, dir, c.Env, c.Targets)
	if err != nil {
		return err
	}
	defer out.Close()

	for ev := range out.All() {
		p.print(ev)
	}
	return p.result()
}

// Writes output events to a pair of writers and records the exit status.
type printer struct {
	stdout io.Writer          // Receives stdout lines.
	stderr io.Writer          // Receives stderr lines.
	status process.ExitStatus // Status from the terminal event.
	exited bool               // Whether a terminal event was seen.
}

func newPrinter(stdout, stderr io.Writer) *printer {
	return &printer{stdout: stdout, stderr: stderr}
}

// Prints a single event.
func (p *printer) print(ev process.Event) {
	switch ev.Kind {
	case process.Stdout:
		fmt.Fprintln(p.stdout, ev.Line)
	case process.Stderr:
		fmt.Fprintln(p.stderr, ev.Line)
	case process.Terminal:
		p.status, p.exited = ev.Status, true
		slog.Debug("build driver exited", "status", ev.Status.String())
	}
}

// Returns the outcome of the printed events.
func (p *printer) result() error {
	if !p.exited {
		return fmt.Errorf("%w: no exit status", ErrBuildFailed)
	}
	if !p.status.Success() {
		return fmt.Errorf("%w: %s", ErrBuildFailed, p.status)
	}
	return nil
}
