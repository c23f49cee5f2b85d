package builder

import (
	"errors"
	"fmt"

	"github.com/cruciblehq/cruxpkg/internal/process"
)

var (
	ErrConfig      = errors.New("invalid builder configuration")
	ErrCallBuilder = errors.New("failed to call package builder")
	ErrClean       = errors.New("failed to clean up build artifacts")
)

// Returned by [Builder.Clean] when the driver exits unsuccessfully.
//
// Matches [ErrClean] with [errors.Is].
type CleanError struct {
	Stdout string             // Captured standard output of the driver.
	Stderr string             // Captured standard error of the driver.
	Status process.ExitStatus // Exit status of the driver.
}

// Formats the error with the driver's exit status.
func (e *CleanError) Error() string {
	return fmt.Sprintf("%s: %s", ErrClean, e.Status)
}

// Returns [ErrClean].
func (e *CleanError) Unwrap() error {
	return ErrClean
}
