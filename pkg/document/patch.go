package document

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// ErrInvalidLength is returned by Patch.Check for malformed length limits.
var ErrInvalidLength = errors.New("document: length must be a non-negative integer")

// Patch carries the attributes the configuration panel may rewrite. Nil
// pointers leave the attribute unchanged; id and type are not patchable.
type Patch struct {
	Label       *string
	Placeholder *string
	Required    *bool
	HelpText    *string
	Options     []string
	SetOptions  bool
	MinLength   *model.Length
	MaxLength   *model.Length
	Pattern     *string
	Step        *int
}

// Apply returns field with the patch applied.
func (p Patch) Apply(field model.Field) model.Field {
	out := field.Clone()
	if p.Label != nil {
		out.Label = *p.Label
	}
	if p.Placeholder != nil {
		out.Placeholder = *p.Placeholder
	}
	if p.Required != nil {
		out.Required = *p.Required
	}
	if p.HelpText != nil {
		out.HelpText = *p.HelpText
	}
	if p.SetOptions {
		out.Options = append([]string{}, p.Options...)
	}
	if p.MinLength != nil {
		out.MinLength = *p.MinLength
	}
	if p.MaxLength != nil {
		out.MaxLength = *p.MaxLength
	}
	if p.Pattern != nil {
		out.Pattern = *p.Pattern
	}
	if p.Step != nil && *p.Step >= 1 {
		out.Step = *p.Step
	}
	return out
}

// Check validates the patch the way the configuration panel does before
// saving.
func (p Patch) Check() error {
	if p.Pattern != nil {
		if err := validation.CheckPattern(*p.Pattern); err != nil {
			return err
		}
	}
	limits := []struct {
		name  string
		value *model.Length
	}{{"minLength", p.MinLength}, {"maxLength", p.MaxLength}}
	for _, limit := range limits {
		if limit.value == nil || *limit.value == "" {
			continue
		}
		if !limit.value.IsSet() {
			return fmt.Errorf("%w: %s=%q", ErrInvalidLength, limit.name, string(*limit.value))
		}
	}
	if p.Step != nil && *p.Step < 1 {
		return fmt.Errorf("document: step must be positive, got %d", *p.Step)
	}
	return nil
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Label == nil && p.Placeholder == nil && p.Required == nil &&
		p.HelpText == nil && !p.SetOptions && p.MinLength == nil &&
		p.MaxLength == nil && p.Pattern == nil && p.Step == nil
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// Len returns a pointer to a Length.
func Len(l model.Length) *model.Length { return &l }
