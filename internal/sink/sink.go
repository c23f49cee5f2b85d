package sink

import (
	"bufio"
	"context"
	_ "crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cruciblehq/cruxpkg/internal/process"
	"github.com/cruciblehq/cruxpkg/internal/runtime"
	"github.com/opencontainers/go-digest"
)

// File mode of image tarballs written by the file sink.
const fileMode os.FileMode = 0644

// Imports an image archive into a container image store.
//
// Satisfied by [*runtime.Runtime].
type Importer interface {
	Import(ctx context.Context, r io.Reader, opts runtime.ImportOptions) ([]runtime.Image, error)
}

// Controls how a [Sink] is opened.
type Options struct {
	LoaderBin string                // Executable for [Loader] targets. Empty uses the runtime name.
	Importer  Importer              // Image store for [Containerd] targets.
	Import    runtime.ImportOptions // Options for [Containerd] targets.
	Stdout    io.Writer             // Destination for [Stdout] targets. Nil uses [os.Stdout].
	Logger    *slog.Logger          // Receives loader output. Nil uses [slog.Default].
}

// Outcome of a background loader or import.
type completion struct {
	stderr string             // Captured loader stderr.
	status process.ExitStatus // Loader exit status.
	images []runtime.Image    // Imported images.
	err    error              // Import error.
}

// Destination for an image byte stream.
//
// Writes are buffered. [Sink.Finalize] must be called exactly once after
// the last write; it flushes the buffer and, for loader and containerd
// targets, waits for the consumer and reports its failure. A finalized sink
// rejects further writes with [ErrFinalized].
type Sink struct {
	target    Target          // Destination description.
	w         *bufio.Writer   // Buffered destination.
	file      *os.File        // Open file of a [File] target.
	stdin     io.WriteCloser  // Loader standard input.
	pipe      *io.PipeWriter  // Write end feeding the importer.
	done      chan completion // Receives the loader or import outcome.
	digester  digest.Digester // Digest of every byte written.
	written   int64           // Number of bytes written.
	images    []runtime.Image // Images reported by the importer.
	finalized bool            // Set by Finalize.
	logger    *slog.Logger    // Receives loader output and import results.
}

// Opens the destination described by target.
//
// For [Loader] targets the runtime's load command is started immediately,
// with its standard input connected to the sink; its output is relayed to
// the logger. For [Containerd] targets the import starts immediately and
// consumes the bytes as they are written.
func Open(ctx context.Context, target Target, opts Options) (*Sink, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Sink{
		target:   target,
		digester: digest.Canonical.Digester(),
		logger:   logger.With("target", target.String()),
	}

	switch target.Kind {
	case File:
		f, err := os.OpenFile(target.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
		if err != nil {
			return nil, fmt.Errorf("could not open output file: %w", err)
		}
		s.file = f
		s.w = bufio.NewWriter(f)

	case Stdout:
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		s.w = bufio.NewWriter(w)

	case Loader:
		if err := s.startLoader(ctx, target.Runtime, opts.LoaderBin); err != nil {
			return nil, err
		}

	case Containerd:
		if opts.Importer == nil {
			return nil, ErrNoImporter
		}
		s.startImport(ctx, opts.Importer, opts.Import)

	default:
		return nil, fmt.Errorf("unknown target kind %d", int(target.Kind))
	}

	return s, nil
}

// Spawns "<bin> load" and connects the sink to its standard input.
func (s *Sink) startLoader(ctx context.Context, r Runtime, bin string) error {
	if bin == "" {
		bin = r.String()
	}

	h, err := process.Launch(ctx, process.Command{
		Args:  []string{bin, "load"},
		Stdin: true,
	})
	if err != nil {
		return fmt.Errorf("failed to call runtime %s: %w", bin, err)
	}

	stdin, err := h.Stdin()
	if err != nil {
		h.Wait()
		return err
	}

	out, err := h.Relay(s.logger)
	if err != nil {
		stdin.Close()
		return err
	}

	s.stdin = stdin
	s.w = bufio.NewWriter(stdin)
	s.done = make(chan completion, 1)

	go func() {
		defer out.Close()

		var stderr strings.Builder
		status := process.ExitStatus{Code: -1}

		for ev := range out.All() {
			switch ev.Kind {
			case process.Stdout:
				s.logger.Info(ev.Line, "runtime", bin)
			case process.Stderr:
				s.logger.Debug(ev.Line, "runtime", bin, "stream", "stderr")
				stderr.WriteString(ev.Line)
				stderr.WriteByte('\n')
			case process.Terminal:
				status = ev.Status
			}
		}

		s.done <- completion{stderr: stderr.String(), status: status}
	}()

	return nil
}

// Starts importing the bytes written to the sink in the background.
func (s *Sink) startImport(ctx context.Context, importer Importer, opts runtime.ImportOptions) {
	pr, pw := io.Pipe()

	s.pipe = pw
	s.w = bufio.NewWriter(pw)
	s.done = make(chan completion, 1)

	go func() {
		imgs, err := importer.Import(ctx, pr, opts)
		if err != nil {
			pr.CloseWithError(err)
		} else {
			pr.Close()
		}
		s.done <- completion{images: imgs, err: err}
	}()
}

// Writes p to the destination.
func (s *Sink) Write(p []byte) (int, error) {
	if s.finalized {
		return 0, ErrFinalized
	}

	n, err := s.w.Write(p)
	s.digester.Hash().Write(p[:n])
	s.written += int64(n)
	return n, err
}

// Flushes buffered bytes and completes the destination.
//
// Files are synced to disk and closed. Standard output is flushed. Loader
// targets have their standard input closed and the loader is waited for; a
// non-zero exit is reported as [ErrUnderlyingProcessFailed] even when every
// write succeeded. Containerd targets close the import stream and report a
// rejected import as [ErrImportFailed]. Returns [ErrFinalized] when called
// again.
func (s *Sink) Finalize() error {
	if s.finalized {
		return ErrFinalized
	}
	s.finalized = true

	flushErr := s.w.Flush()

	switch s.target.Kind {
	case File:
		if flushErr != nil {
			s.file.Close()
			return flushErr
		}
		if err := s.file.Sync(); err != nil {
			s.file.Close()
			return err
		}
		return s.file.Close()

	case Stdout:
		return flushErr

	case Loader:
		closeErr := s.stdin.Close()
		c := <-s.done

		if !c.status.Success() {
			return fmt.Errorf("%w: %s: %s", ErrUnderlyingProcessFailed, c.status, lastLine(c.stderr))
		}
		return errors.Join(flushErr, closeErr)

	case Containerd:
		closeErr := s.pipe.Close()
		c := <-s.done

		if c.err != nil {
			return fmt.Errorf("%w: %w", ErrImportFailed, c.err)
		}
		s.images = c.images
		for _, img := range c.images {
			s.logger.Info("loaded image", "name", img.Name, "digest", img.Digest)
		}
		return errors.Join(flushErr, closeErr)
	}

	return flushErr
}

// Returns the target the sink writes to.
func (s *Sink) Target() Target {
	return s.target
}

// Returns the digest of the bytes written so far.
func (s *Sink) Digest() digest.Digest {
	return s.digester.Digest()
}

// Returns the number of bytes written so far.
func (s *Sink) Written() int64 {
	return s.written
}

// Returns the images imported by a finalized [Containerd] sink.
func (s *Sink) Images() []runtime.Image {
	return s.images
}

// Returns the last non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
