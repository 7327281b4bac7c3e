package apperrors

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrCrossOrigin        = errors.New("cross-origin access denied")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
