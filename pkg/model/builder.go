package model

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const fieldIDLength = 12

// IDGenerator produces unique field identifiers.
type IDGenerator func() (string, error)

// NanoID is the default IDGenerator.
func NanoID() (string, error) {
	id, err := gonanoid.New(fieldIDLength)
	if err != nil {
		return "", fmt.Errorf("model: generate field id: %w", err)
	}
	return id, nil
}

// NewField builds a palette field with a fresh id and type defaults.
func NewField(t FieldType, step int) (Field, error) {
	return NewFieldWithID(t, step, NanoID)
}

// NewFieldWithID is NewField with a caller supplied id generator.
func NewFieldWithID(t FieldType, step int, gen IDGenerator) (Field, error) {
	if !t.IsValid() {
		return Field{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, string(t))
	}
	if gen == nil {
		gen = NanoID
	}
	id, err := gen()
	if err != nil {
		return Field{}, err
	}
	if step < 1 {
		step = 1
	}

	field := Field{
		ID:      id,
		Type:    t,
		Step:    step,
		Options: []string{},
	}
	if t.HasOptions() {
		field.Options = append([]string{}, DefaultOptions...)
	}
	return field, nil
}
