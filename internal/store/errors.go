package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a unique constraint.
var ErrConflict = errors.New("conflict")

// ErrReferenced is returned when a delete or update violates a foreign key.
var ErrReferenced = errors.New("referenced by other records")

// ErrTooLong is returned when a value exceeds its column length.
var ErrTooLong = errors.New("value too long")

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqStringTruncation    = "22001"
)

// mapError translates postgres constraint violations into store errors.
// The original error stays reachable through errors.Is/As.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return &constraintError{kind: ErrConflict, constraint: pqErr.Constraint, err: err}
		case pqForeignKeyViolation:
			return &constraintError{kind: ErrReferenced, constraint: pqErr.Constraint, err: err}
		case pqStringTruncation:
			return &constraintError{kind: ErrTooLong, constraint: pqErr.Column, err: err}
		}
	}
	return err
}

type constraintError struct {
	kind       error
	constraint string
	err        error
}

func (e *constraintError) Error() string {
	if e.constraint == "" {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.constraint
}

func (e *constraintError) Is(target error) bool {
	return target == e.kind
}

func (e *constraintError) Unwrap() error {
	return e.err
}

// Constraint returns the violated constraint name, if err carries one.
func Constraint(err error) string {
	var cErr *constraintError
	if errors.As(err, &cErr) {
		return cErr.constraint
	}
	return ""
}
