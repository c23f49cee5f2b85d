package sink

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Names of the runtimes searched for by [Detect], in order of preference
// within a single search path entry.
var detectable = []Runtime{Docker, Podman}

// Destination variant of a [Target].
type Kind int

const (
	File       Kind = iota // A file on disk.
	Stdout                 // The process's standard output.
	Loader                 // The standard input of a runtime's load command.
	Containerd             // A containerd image store.
)

// Container runtime an image can be loaded into.
type Runtime int

const (
	Docker Runtime = iota
	Podman
	ContainerdRuntime
)

// Parses a runtime name.
//
// Accepts "docker", "podman" and "containerd". Returns [ErrInvalidRuntime]
// for anything else.
func ParseRuntime(s string) (Runtime, error) {
	switch s {
	case "docker":
		return Docker, nil
	case "podman":
		return Podman, nil
	case "containerd":
		return ContainerdRuntime, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRuntime, s)
	}
}

// Returns the executable name of the runtime.
func (r Runtime) String() string {
	switch r {
	case Docker:
		return "docker"
	case Podman:
		return "podman"
	case ContainerdRuntime:
		return "containerd"
	default:
		return fmt.Sprintf("runtime(%d)", int(r))
	}
}

// Destination of an image stream.
type Target struct {
	Kind    Kind    // Destination variant.
	Path    string  // File path. Only used by [File].
	Runtime Runtime // Runtime to load into. Only used by [Loader] and [Containerd].
}

// Returns a file target, or the stdout target for "-".
func FileTarget(path string) Target {
	if path == "-" {
		return Target{Kind: Stdout}
	}
	return Target{Kind: File, Path: path}
}

// Returns the target that loads images into r.
func RuntimeTarget(r Runtime) Target {
	if r == ContainerdRuntime {
		return Target{Kind: Containerd, Runtime: r}
	}
	return Target{Kind: Loader, Runtime: r}
}

// Returns the target named by an output file or a runtime.
//
// At most one of file and runtime may be set. A file of "-" selects
// [Stdout]. Returns [ErrNoTarget] when both are empty, in which case the
// caller typically falls back to [Detect].
func ParseTarget(file, runtime string) (Target, error) {
	switch {
	case file != "" && runtime != "":
		return Target{}, ErrConflictingTargets
	case runtime != "":
		r, err := ParseRuntime(runtime)
		if err != nil {
			return Target{}, err
		}
		return RuntimeTarget(r), nil
	case file != "":
		return FileTarget(file), nil
	}
	return Target{}, ErrNoTarget
}

// Describes the target for user-facing messages.
func (t Target) String() string {
	switch t.Kind {
	case File:
		return fmt.Sprintf("file '%s'", t.Path)
	case Stdout:
		return "stdout"
	case Loader:
		switch t.Runtime {
		case Docker:
			return "Docker runtime"
		case Podman:
			return "Podman runtime"
		}
		return t.Runtime.String() + " runtime"
	case Containerd:
		return "containerd image store"
	default:
		return fmt.Sprintf("target(%d)", int(t.Kind))
	}
}

// Picks a default target for an image called name.
//
// searchPath is a list of directories in the format of the PATH variable.
// Directories are scanned in order and the first one containing a docker or
// podman executable selects that runtime; docker wins when a directory holds
// both. If neither is found, the target is the file "<name>-container.tar".
func Detect(name, searchPath string) Target {
	for _, dir := range filepath.SplitList(searchPath) {
		if dir == "" {
			continue
		}
		for _, r := range detectable {
			info, err := os.Stat(filepath.Join(dir, r.String()))
			if err != nil || info.IsDir() {
				continue
			}
			slog.Debug("detected container runtime", "runtime", r.String(), "dir", dir)
			return RuntimeTarget(r)
		}
	}

	slog.Debug("no container runtime found in search path")
	return FileTarget(name + "-container.tar")
}
