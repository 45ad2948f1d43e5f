package domain

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrStorageUnavailable   = errors.New("counter store unavailable")
	ErrAmountExceedsCeiling = errors.New("transfer amount exceeds ceiling")
	ErrTransferFailed       = errors.New("token transfer failed")
	ErrUnsupportedToken     = errors.New("unsupported reward token")
)
