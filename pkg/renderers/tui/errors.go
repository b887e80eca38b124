package tui

import "errors"

var (
	// ErrAborted signals the user interrupted the session (Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrEmptyForm is returned when the document has no fields to preview.
	ErrEmptyForm = errors.New("tui: form has no fields")
)
