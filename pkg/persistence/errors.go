package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by *NotFoundError.
	ErrNotFound = errors.New("persistence: not found")
	// ErrCorruptState is matched by *CorruptStateError.
	ErrCorruptState = errors.New("persistence: corrupt state")
	// ErrUnnamed is returned when saving a template without a name.
	ErrUnnamed = errors.New("persistence: template name is required")
	// ErrInvalidTheme is returned for theme values other than light or dark.
	ErrInvalidTheme = errors.New("persistence: theme must be light or dark")
)

// NotFoundError reports an absent template or share id.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("persistence: %s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// CorruptStateError reports a stored value that could not be decoded.
type CorruptStateError struct {
	Key string
	Err error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("persistence: corrupt value under %q: %v", e.Key, e.Err)
}

func (e *CorruptStateError) Unwrap() []error { return []error{ErrCorruptState, e.Err} }
