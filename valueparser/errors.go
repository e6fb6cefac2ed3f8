package valueparser

import "errors"

var (
	ErrUnknownType = errors.New("unknown type")
	ErrInvalidType = errors.New("invalid type")
)
