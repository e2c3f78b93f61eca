package persistence

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConstraintViolation indicates a check or not-null constraint failed.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrForeignKeyViolation indicates a referenced record does not exist.
	ErrForeignKeyViolation = errors.New("foreign key violation")
)
