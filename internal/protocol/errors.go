package protocol

import "errors"

var (
	ErrEncode = errors.New("failed to encode message")
	ErrDecode = errors.New("failed to decode message")
)
