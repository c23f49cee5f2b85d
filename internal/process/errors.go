package process

import "errors"

var (
	ErrLaunch   = errors.New("failed to launch process")
	ErrConsumed = errors.New("process handle already consumed")
	ErrNoStdin  = errors.New("process stdin not connected")
)
