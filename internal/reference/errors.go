package reference

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when no record matches an id or slug.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no local record for %q", e.Identifier)
}

// PersistenceError is returned when the backup-then-write sequence fails.
// The in-memory mapping is rolled back before it is returned.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("reference store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ErrInvalidField is returned by Upsert when an id or slug is empty or
// contains whitespace, which the line format cannot represent.
var ErrInvalidField = errors.New("field must be non-empty and contain no whitespace")

// ErrSlugConflict is returned by Upsert when the slug already belongs to a
// different id.
var ErrSlugConflict = errors.New("slug is already bound to another id")

// IsNotFound checks if an error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsPersistenceError checks if an error is a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
