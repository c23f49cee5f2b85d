package cli

import "errors"

var (
	ErrBuildFailed = errors.New("build failed")
	ErrLoadFailed  = errors.New("load failed")
)
