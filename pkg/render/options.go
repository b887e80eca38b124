package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/navigation"
	"github.com/goliatone/go-formbuilder/pkg/steps"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// RenderOptions describe the preview state a renderer draws. The zero value
// renders the first step with no input.
type RenderOptions struct {
	// Step selects the step to draw. Zero or an unknown value falls back to
	// the first step.
	Step int
	// Values pre-populates controls, keyed by field id.
	Values validation.Values
	// Errors are shown inline next to the matching fields.
	Errors validation.ErrorMap
	// Waiting replaces the step with the "Please Wait" state.
	Waiting bool
	// Submitted marks the form as sent.
	Submitted bool
	// Title overrides the document name as heading.
	Title string
	// Action is the form action URL; empty renders a form without one.
	Action string
	// Theme carries the resolved light or dark tokens.
	Theme *theme.RendererConfig
}

// FromState copies a navigation snapshot into render options.
func FromState(state navigation.State) RenderOptions {
	return RenderOptions{
		Step:      state.CurrentStep,
		Values:    state.Values,
		Errors:    state.Errors,
		Waiting:   state.Waiting,
		Submitted: state.Submitted,
	}
}

// ResolveStep returns the step to draw for seq, which must be a step
// sequence as produced by steps.Compute.
func (o RenderOptions) ResolveStep(seq []int) int {
	if steps.Contains(seq, o.Step) {
		return o.Step
	}
	return steps.First(seq)
}

// Messages shown by every preview.
const (
	EmptyMessage     = "You need to add Controls to see output here."
	WaitingMessage   = "Please Wait"
	SubmittedMessage = "Form submitted!"
	NotFoundMessage  = "Form not found"
)
