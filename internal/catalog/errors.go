package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every missing-row error returned by this package
	ErrNotFound = errors.New("not found")

	// ErrNoSelection is returned when an association set is empty
	ErrNoSelection = errors.New("at least one item must be selected")
)

// NotFoundError reports a lookup by id that matched no row
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s matching id %s does not exist", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ReferenceError reports an association to a row that does not exist.
// Any write in progress is rolled back.
type ReferenceError struct {
	Entity string
	ID     uint
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("referenced %s %d does not exist", e.Entity, e.ID)
}

func (e *ReferenceError) Is(target error) bool { return target == ErrNotFound }

func notFound(entity string, id uint) error {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}
