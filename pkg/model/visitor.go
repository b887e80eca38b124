package model

import "fmt"

// Visitor handles every field type. Renderers implement it so a new palette
// entry fails to compile until each of them knows how to draw it.
type Visitor[T any] interface {
	Text(Field) T
	Textarea(Field) T
	Dropdown(Field) T
	Checkbox(Field) T
	Radio(Field) T
	Date(Field) T
	Time(Field) T
	Email(Field) T
	Number(Field) T
	Phone(Field) T
	File(Field) T
	Toggle(Field) T
}

// Visit dispatches field to the matching Visitor method.
func Visit[T any](field Field, v Visitor[T]) (T, error) {
	switch field.Type {
	case FieldTypeText:
		return v.Text(field), nil
	case FieldTypeTextarea:
		return v.Textarea(field), nil
	case FieldTypeDropdown:
		return v.Dropdown(field), nil
	case FieldTypeCheckbox:
		return v.Checkbox(field), nil
	case FieldTypeRadio:
		return v.Radio(field), nil
	case FieldTypeDate:
		return v.Date(field), nil
	case FieldTypeTime:
		return v.Time(field), nil
	case FieldTypeEmail:
		return v.Email(field), nil
	case FieldTypeNumber:
		return v.Number(field), nil
	case FieldTypePhone:
		return v.Phone(field), nil
	case FieldTypeFile:
		return v.File(field), nil
	case FieldTypeToggle:
		return v.Toggle(field), nil
	default:
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrUnknownFieldType, string(field.Type))
	}
}
