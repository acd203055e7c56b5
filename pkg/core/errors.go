package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrReadOnly     = errors.New("notebook is in read-only mode")
	ErrNotFound     = errors.New("record not found")
	ErrStorageRead  = errors.New("storage read failed")
	ErrStorageWrite = errors.New("storage write failed")
	ErrConflict     = errors.New("collection changed since it was loaded")
)

// ErrValidation is matched by every error that rejects input before a write.
var ErrValidation = errors.New("validation failed")

var (
	ErrEmptyName     = fmt.Errorf("%w: folder name cannot be empty", ErrValidation)
	ErrDuplicateName = fmt.Errorf("%w: a folder with this name already exists", ErrValidation)
	ErrMissingDate   = fmt.Errorf("%w: reminder has no date", ErrValidation)
	ErrMissingID     = fmt.Errorf("%w: record has no id", ErrValidation)
	ErrInvalidMode   = fmt.Errorf("%w: invalid mode", ErrValidation)
)

// OpError names the user-facing operation that failed, e.g. "delete note".
type OpError struct {
	Op  string
	Key string
	Err error
}

func (e *OpError) Error() string {
	return "could not " + e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }
