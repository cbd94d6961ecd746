package types

import "errors"

// Domain errors for type validation
var (
	ErrEmptyName          = errors.New("entity name cannot be empty")
	ErrInvalidKind        = errors.New("invalid entity kind")
	ErrInvalidLineRange   = errors.New("invalid line range")
	ErrInvalidGranularity = errors.New("invalid granularity")
)
