package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cruciblehq/cruxpkg/internal/process"
)

// Ensure Make satisfies the builder interface.
var _ Builder = (*Make)(nil)

// Builds targets by evaluating a makefile driver.
type Make struct {
	config Config       // Resolved driver configuration.
	logger *slog.Logger // Receives driver invocations and undecodable output.
}

// Creates a make-driven builder.
//
// Returns [ErrConfig] if the driver script is not set. A nil logger uses
// [slog.Default].
func NewMake(cfg Config, logger *slog.Logger) (*Make, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Make{config: cfg, logger: logger}, nil
}

// Starts the build driver for targets.
//
// Returns as soon as the driver is running. Only a failure to start the
// driver is returned as an error, wrapped in [ErrCallBuilder].
func (m *Make) Build(ctx context.Context, baseDir, envContext string, targets []string) (*process.Output, error) {
	args := m.command(baseDir, envContext, goals(buildAllGoal, targets))

	m.logger.Debug("running build target", "command", args)

	h, err := process.Launch(ctx, process.Command{
		Env:  m.config.Env,
		Args: args,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCallBuilder, err)
	}

	return h.Relay(m.logger)
}

// Runs the clean driver for targets and waits for it to finish.
//
// Returns a [*CleanError] with the captured output if the driver exits
// unsuccessfully, or an error wrapping [ErrCallBuilder] if it cannot be
// started.
func (m *Make) Clean(ctx context.Context, baseDir, envContext string, targets []string) error {
	args := m.command(baseDir, envContext, goals(cleanAllGoal, targets))

	m.logger.Debug("running clean target", "command", args)

	h, err := process.Launch(ctx, process.Command{
		Env:  m.config.Env,
		Args: args,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCallBuilder, err)
	}

	out, err := h.Relay(m.logger)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCallBuilder, err)
	}
	res := out.Drain()

	if !res.Status.Success() {
		m.logger.Debug("failed to clean build artifacts",
			"status", res.Status.String(),
			"stdout", res.Stdout,
			"stderr", res.Stderr,
		)
		return &CleanError{
			Stdout: res.Stdout,
			Stderr: res.Stderr,
			Status: res.Status,
		}
	}

	return nil
}

// Returns the full driver argument vector for the given goals.
//
// The driver is launched in the caller's working directory and binds to
// baseDir through -C only, so a relative baseDir is resolved once.
func (m *Make) command(baseDir, envContext string, goals []string) []string {
	args := []string{
		m.config.MakeBin,
		"-f", m.config.BuildMk,
		"-C", baseDir,
		m.config.ContextVar + "=" + envContext,
	}
	return append(args, goals...)
}

// Returns the goal names for targets.
//
// The all-goal is named explicitly for an empty target set, even where it
// is also the driver's default goal. Targets are prefixed with the goal and
// a slash; duplicates are kept.
func goals(all string, targets []string) []string {
	if len(targets) == 0 {
		return []string{all}
	}

	out := make([]string, 0, len(targets))
	for _, t := range targets {
		out = append(out, all+"/"+t)
	}
	return out
}
