package server

import "errors"

var (
	ErrServer    = errors.New("server error")
	ErrNoBuilder = errors.New("no builder configured")
)
