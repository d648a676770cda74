package shared

import "errors"

var (
	// ErrNotFound indicates a missing sku or document id.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey indicates a sku or id collision on create.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidState occurs when an operation is attempted outside the
	// required lifecycle state.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrInsufficientStock indicates the finalize pre-check failed.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("invalid input")
	// ErrPersistence indicates an I/O failure reading or writing a data file.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
