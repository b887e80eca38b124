// Package steps derives the page partition of a form from its fields. Steps
// are never stored on their own: the sequence is always recomputed from the
// `step` value of each field, so the two cannot drift apart.
package steps

import (
	"errors"
	"sort"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ErrMinimumStep is the MinimumStepViolation raised when deleting the only
// remaining step.
var ErrMinimumStep = errors.New("steps: a form must keep at least one step")

// ErrUnknownStep is returned when deleting a step that is not in the sequence.
var ErrUnknownStep = errors.New("steps: step not found")

// Compute returns the sorted distinct step values of fields, or [1] when the
// collection is empty.
func Compute(fields []model.Field) []int {
	if len(fields) == 0 {
		return []int{1}
	}
	seen := make(map[int]struct{}, len(fields))
	out := make([]int, 0, len(fields))
	for _, field := range fields {
		if _, ok := seen[field.Step]; ok {
			continue
		}
		seen[field.Step] = struct{}{}
		out = append(out, field.Step)
	}
	sort.Ints(out)
	return out
}

// Add appends max(steps)+1. The new step starts without fields.
func Add(steps []int) []int {
	out := append([]int{}, steps...)
	if len(out) == 0 {
		return []int{1}
	}
	return append(out, Last(out)+1)
}

// Result is the outcome of Delete.
type Result struct {
	Steps  []int
	Fields []model.Field
	Active int
}

// Delete removes active from steps together with every field assigned to it,
// then selects the first remaining step. The inputs are not modified.
func Delete(steps []int, active int, fields []model.Field) (Result, error) {
	if len(steps) <= 1 {
		return Result{}, ErrMinimumStep
	}
	if !Contains(steps, active) {
		return Result{}, ErrUnknownStep
	}

	remaining := make([]int, 0, len(steps)-1)
	for _, step := range steps {
		if step != active {
			remaining = append(remaining, step)
		}
	}

	kept := make([]model.Field, 0, len(fields))
	for _, field := range fields {
		if field.Step == active {
			continue
		}
		kept = append(kept, field.Clone())
	}

	return Result{
		Steps:  remaining,
		Fields: kept,
		Active: remaining[0],
	}, nil
}

// Filter returns the fields assigned to step, in document order.
func Filter(fields []model.Field, step int) []model.Field {
	var out []model.Field
	for _, field := range fields {
		if field.Step == step {
			out = append(out, field)
		}
	}
	return out
}

// Contains reports whether step is part of the sequence.
func Contains(steps []int, step int) bool {
	for _, s := range steps {
		if s == step {
			return true
		}
	}
	return false
}

// First returns the lowest step, defaulting to 1.
func First(steps []int) int {
	if len(steps) == 0 {
		return 1
	}
	return steps[0]
}

// Last returns the highest step, defaulting to 1.
func Last(steps []int) int {
	if len(steps) == 0 {
		return 1
	}
	return steps[len(steps)-1]
}

// Next returns the next larger value after current.
func Next(steps []int, current int) (int, bool) {
	for _, step := range steps {
		if step > current {
			return step, true
		}
	}
	return 0, false
}

// Prev returns the next smaller value before current.
func Prev(steps []int, current int) (int, bool) {
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i] < current {
			return steps[i], true
		}
	}
	return 0, false
}

// Position returns the 1-based index of step and the total number of steps.
func Position(steps []int, step int) (int, int) {
	for i, s := range steps {
		if s == step {
			return i + 1, len(steps)
		}
	}
	return 0, len(steps)
}
