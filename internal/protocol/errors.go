package protocol

import "errors"

var (
	ErrVarIntTooLong = errors.New("varint is too long")
	ErrFrameTooLarge = errors.New("frame size exceeds maximum allowed")
	ErrInvalidFrame  = errors.New("invalid frame structure")
)
