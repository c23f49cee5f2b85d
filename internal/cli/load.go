package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cruciblehq/cruxpkg/internal/runtime"
	"github.com/cruciblehq/cruxpkg/internal/sink"
)

// Represents the 'cruxpkg load' command.
type LoadCmd struct {
	Source     string `arg:"" optional:"" default:"-" help:"Image archive to read, or '-' for standard input."`
	File       string `short:"f" help:"Write the image to a file, or '-' for standard output." placeholder:"FILE"`
	Runtime    string `short:"r" help:"Load the image into a runtime (docker, podman or containerd)." placeholder:"NAME"`
	Name       string `short:"n" default:"image" help:"Image name used for the default output file."`
	Loader     string `help:"Executable used for docker and podman loads. Defaults to the runtime name." placeholder:"BIN"`
	Tag        string `short:"t" help:"Reference to tag the image with (containerd only)."`
	Platform   string `help:"Platform to import (containerd only)." placeholder:"OS/ARCH"`
	Unpack     bool   `help:"Unpack the image into the snapshotter (containerd only)."`
	Containerd string `name:"containerd-address" env:"CONTAINERD_ADDRESS" default:"${containerd_address}" help:"Containerd socket address." placeholder:"PATH"`
	Namespace  string `name:"containerd-namespace" default:"${containerd_namespace}" help:"Containerd namespace." placeholder:"NAME"`
}

// Executes the load command.
//
// Without --file or --runtime the first docker or podman found on PATH is
// used, and the image is written to "<name>-container.tar" if neither is
// installed.
func (c *LoadCmd) Run(ctx context.Context) error {
	target, err := c.target()
	if err != nil {
		return err
	}

	src, err := c.open()
	if err != nil {
		return err
	}
	defer src.Close()

	opts := sink.Options{
		LoaderBin: c.Loader,
		Import: runtime.ImportOptions{
			Tag:      c.Tag,
			Platform: c.Platform,
			Unpack:   c.Unpack,
		},
		Logger: slog.Default(),
	}

	if target.Kind == sink.Containerd {
		rt, err := runtime.New(c.Containerd, c.Namespace)
		if err != nil {
			return err
		}
		defer rt.Close()
		opts.Importer = rt
	}

	s, err := sink.Open(ctx, target, opts)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(s, src)
	if err := errors.Join(copyErr, s.Finalize()); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	slog.Info("image written", "target", target.String(), "digest", s.Digest(), "bytes", s.Written())
	for _, img := range s.Images() {
		slog.Info("image available", "name", img.Name, "digest", img.Digest)
	}
	return nil
}

// Returns the target selected by the flags, detecting one if none is given.
func (c *LoadCmd) target() (sink.Target, error) {
	target, err := sink.ParseTarget(c.File, c.Runtime)
	if errors.Is(err, sink.ErrNoTarget) {
		return sink.Detect(c.Name, os.Getenv("PATH")), nil
	}
	return target, err
}

// Opens the image archive.
func (c *LoadCmd) open() (io.ReadCloser, error) {
	if c.Source == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(c.Source)
}
