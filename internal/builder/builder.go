package builder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cruciblehq/cruxpkg/internal/process"
)

const (

	// Default driver interpreter, resolved against PATH.
	DefaultMakeBin = "make"

	// Default name of the variable that binds the environment context.
	DefaultContextVar = "CRUX_ENV"

	// Goal that builds every target.
	buildAllGoal = "build"

	// Goal that cleans every target.
	cleanAllGoal = "clean"
)

// Builds and cleans named targets.
type Builder interface {

	// Starts building targets in the background.
	//
	// baseDir is the working directory of the build and receives the result
	// links. envContext identifies the rendered environment the targets are
	// defined in. An empty target set builds everything. The returned
	// output must be drained or closed by the caller; its terminal event
	// carries the build's exit status.
	Build(ctx context.Context, baseDir, envContext string, targets []string) (*process.Output, error)

	// Removes the build artifacts of targets and waits for completion.
	//
	// An empty target set cleans everything.
	Clean(ctx context.Context, baseDir, envContext string, targets []string) error
}

// Resolved configuration of a [Make] builder.
type Config struct {
	MakeBin    string            // Driver interpreter. Empty uses [DefaultMakeBin].
	BuildMk    string            // Path to the driver script. Required.
	ContextVar string            // Context-binding variable name. Empty uses [DefaultContextVar].
	Env        map[string]string // Extra environment for the driver.
}

// Fills in defaults and validates the configuration.
func (c Config) resolve() (Config, error) {
	if c.MakeBin == "" {
		c.MakeBin = DefaultMakeBin
	}
	if c.ContextVar == "" {
		c.ContextVar = DefaultContextVar
	}
	if c.BuildMk == "" {
		return c, fmt.Errorf("%w: build driver script not set", ErrConfig)
	}
	return c, nil
}

// Path of the link to the build result of target inside baseDir.
func ResultLink(baseDir, target string) string {
	return filepath.Join(baseDir, "result-"+target)
}

// Path of the link to the build cache of target inside baseDir.
func CacheLink(baseDir, target string) string {
	return filepath.Join(baseDir, "result-"+target+"-buildCache")
}
