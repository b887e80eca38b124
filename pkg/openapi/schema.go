package openapi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Extension keys attached to property schemas.
const (
	ExtensionStep      = "x-step"
	ExtensionFieldType = "x-field-type"
	ExtensionLabel     = "x-label"
)

// ErrInvalidSubmission is matched by every error ValidateSubmission returns
// for a payload that does not fit the schema.
var ErrInvalidSubmission = errors.New("openapi: submission does not match form schema")

// SubmissionSchema builds the object schema of a submission for doc. Text
// fields carry their length and pattern rules; option fields enumerate their
// options; toggles are booleans and checkbox groups string arrays. Patterns
// that do not compile are left out.
func SubmissionSchema(doc model.Document) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Properties = make(openapi3.Schemas, len(doc.Fields))
	if doc.Name != "" {
		schema.Title = doc.Name
	}

	for _, field := range doc.Fields {
		prop := fieldSchema(field)
		schema.Properties[field.ID] = prop.NewRef()
		if field.Required {
			schema.Required = append(schema.Required, field.ID)
		}
	}
	return schema
}

func fieldSchema(field model.Field) *openapi3.Schema {
	var s *openapi3.Schema
	switch field.Type {
	case model.FieldTypeToggle:
		s = openapi3.NewBoolSchema()
		if field.Required {
			s.Enum = []any{true}
		}
	case model.FieldTypeCheckbox:
		items := openapi3.NewStringSchema().WithEnum(enum(field.Options)...)
		s = openapi3.NewArraySchema().WithItems(items)
		if field.Required {
			s.WithMinItems(1)
		}
	case model.FieldTypeDropdown, model.FieldTypeRadio:
		s = openapi3.NewStringSchema()
		if len(field.Options) > 0 {
			s.WithEnum(enum(field.Options)...)
		}
	default:
		s = openapi3.NewStringSchema()
		if field.Required {
			s.WithMinLength(1)
		}
	}

	if field.Type.IsTextLike() {
		if n, ok := field.MinLengthValue(); ok && n > 0 {
			s.WithMinLength(int64(n))
		}
		if n, ok := field.MaxLengthValue(); ok {
			s.WithMaxLength(int64(n))
		}
		if field.Pattern != "" && validation.CheckPattern(field.Pattern) == nil {
			s.WithPattern(field.Pattern)
		}
	}

	if field.Label != "" {
		s.Description = field.Label
	}
	s.Extensions = map[string]any{
		ExtensionStep:      field.Step,
		ExtensionFieldType: string(field.Type),
	}
	if field.Label != "" {
		s.Extensions[ExtensionLabel] = field.Label
	}
	return s
}

func enum(options []string) []any {
	out := make([]any, 0, len(options))
	for _, option := range options {
		out = append(out, option)
	}
	return out
}

// ValidateSubmission checks values against SubmissionSchema(doc). Every
// violation is reported, wrapped so errors.Is matches ErrInvalidSubmission.
func ValidateSubmission(doc model.Document, values validation.Values) error {
	payload, err := normalize(values)
	if err != nil {
		return err
	}
	if err := SubmissionSchema(doc).VisitJSON(payload, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	return nil
}

// normalize converts values into the generic JSON shapes the schema visitor
// understands. Nil and empty-string entries are dropped so they count as
// absent, the same way the validation engine reads them.
func normalize(values validation.Values) (map[string]any, error) {
	clean := make(map[string]any, len(values))
	for key, value := range values {
		if value == nil || value == "" {
			continue
		}
		clean[key] = value
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("openapi: encode submission: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("openapi: decode submission: %w", err)
	}
	return out, nil
}

// FieldErrors maps the violations of a ValidateSubmission error to the
// fields they concern. Every offending field reads MessageInvalidFormat.
func FieldErrors(err error) validation.ErrorMap {
	out := validation.ErrorMap{}
	var multi openapi3.MultiError
	var single *openapi3.SchemaError
	switch {
	case errors.As(err, &multi):
		collectFieldErrors(multi, out)
	case errors.As(err, &single):
		collectFieldErrors(single, out)
	}
	return out
}

func collectFieldErrors(err error, out validation.ErrorMap) {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, item := range e {
			collectFieldErrors(item, out)
		}
	case *openapi3.SchemaError:
		if path := e.JSONPointer(); len(path) > 0 {
			out[path[0]] = validation.MessageInvalidFormat
		}
	}
}
