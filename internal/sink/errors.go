package sink

import "errors"

var (
	ErrFinalized               = errors.New("sink already finalized")
	ErrUnderlyingProcessFailed = errors.New("writing to runtime was unsuccessful")
	ErrImportFailed            = errors.New("image import was unsuccessful")
	ErrInvalidRuntime          = errors.New("runtime must be 'docker', 'podman' or 'containerd'")
	ErrNoImporter              = errors.New("containerd target requires an importer")
	ErrNoTarget                = errors.New("no output target given")
	ErrConflictingTargets      = errors.New("output file and runtime are mutually exclusive")
)
