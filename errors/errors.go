package errors

import (
	"errors"
)

// Error taxonomy of the tracker core. Services wrap these with %w so the
// api layer can map them to HTTP statuses with errors.Is.
var (
	ErrValidation   = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAuth         = errors.New("authentication failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")
)
