package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FieldType is the closed set of controls the palette offers.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeDropdown FieldType = "dropdown"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeDate     FieldType = "date"
	FieldTypeTime     FieldType = "time"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypePhone    FieldType = "phone"
	FieldTypeFile     FieldType = "file"
	FieldTypeToggle   FieldType = "toggle"
)

// ErrUnknownFieldType is returned when a type string is outside the palette.
var ErrUnknownFieldType = errors.New("model: unknown field type")

// DefaultOptions seeds option-backed fields on creation.
var DefaultOptions = []string{"Option 1", "Option 2"}

// NewOptionLabel is appended when the configuration panel adds an option.
const NewOptionLabel = "New Option"

// AllFieldTypes returns every supported field type in palette order.
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeTextarea,
		FieldTypeDropdown,
		FieldTypeCheckbox,
		FieldTypeRadio,
		FieldTypeDate,
		FieldTypeTime,
		FieldTypeEmail,
		FieldTypeNumber,
		FieldTypePhone,
		FieldTypeFile,
		FieldTypeToggle,
	}
}

// ParseFieldType normalises raw input into a FieldType.
func ParseFieldType(raw string) (FieldType, error) {
	t := FieldType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFieldType, raw)
	}
	return t, nil
}

// IsValid reports whether t belongs to the palette.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText,
		FieldTypeTextarea,
		FieldTypeDropdown,
		FieldTypeCheckbox,
		FieldTypeRadio,
		FieldTypeDate,
		FieldTypeTime,
		FieldTypeEmail,
		FieldTypeNumber,
		FieldTypePhone,
		FieldTypeFile,
		FieldTypeToggle:
		return true
	default:
		return false
	}
}

// HasOptions reports whether the type renders a list of options.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeDropdown, FieldTypeCheckbox, FieldTypeRadio:
		return true
	default:
		return false
	}
}

// IsTextLike reports whether placeholder and length constraints apply.
func (t FieldType) IsTextLike() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeEmail, FieldTypeNumber, FieldTypePhone:
		return true
	default:
		return false
	}
}

// IsMultiValue reports whether the collected value is a list of options.
func (t FieldType) IsMultiValue() bool {
	return t == FieldTypeCheckbox
}

// Label returns the palette caption for the type.
func (t FieldType) Label() string {
	switch t {
	case FieldTypeText:
		return "Text Input"
	case FieldTypeTextarea:
		return "Textarea"
	case FieldTypeDropdown:
		return "Dropdown"
	case FieldTypeCheckbox:
		return "Checkbox"
	case FieldTypeRadio:
		return "Radio Group"
	case FieldTypeDate:
		return "Date"
	case FieldTypeTime:
		return "Time"
	case FieldTypeEmail:
		return "Email"
	case FieldTypeNumber:
		return "Number"
	case FieldTypePhone:
		return "Phone"
	case FieldTypeFile:
		return "File Upload"
	case FieldTypeToggle:
		return "Toggle"
	default:
		return string(t)
	}
}

func (t FieldType) String() string {
	return string(t)
}

// Length is an optional non-negative character limit. It is persisted as a
// string ("" when unset) and also accepts bare JSON numbers when decoding.
type Length string

// NewLength encodes n as a Length.
func NewLength(n int) Length {
	if n < 0 {
		return ""
	}
	return Length(strconv.Itoa(n))
}

// Value parses the limit. Unset, malformed and negative values report false.
func (l Length) Value() (int, bool) {
	raw := strings.TrimSpace(string(l))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// IsSet reports whether the limit carries a usable value.
func (l Length) IsSet() bool {
	_, ok := l.Value()
	return ok
}

func (l *Length) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*l = ""
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Length(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("model: length must be a string or number: %w", err)
		}
		*l = Length(n.String())
		return nil
	}
}

// Field is one form control. JSON keys match the persisted record shape.
type Field struct {
	ID          string    `json:"id"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder"`
	Required    bool      `json:"required"`
	HelpText    string    `json:"helpText"`
	Options     []string  `json:"options"`
	MinLength   Length    `json:"minLength"`
	MaxLength   Length    `json:"maxLength"`
	Pattern     string    `json:"pattern"`
	Step        int       `json:"step"`
}

type fieldJSON Field

// MarshalJSON keeps options as an array even when empty.
func (f Field) MarshalJSON() ([]byte, error) {
	out := fieldJSON(f)
	if out.Options == nil {
		out.Options = []string{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON applies the defaults older records rely on: a missing step
// means the first page.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw fieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Step < 1 {
		raw.Step = 1
	}
	if raw.Options == nil {
		raw.Options = []string{}
	}
	*f = Field(raw)
	return nil
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	out.Options = append([]string{}, f.Options...)
	return out
}

// MinLengthValue returns the parsed minimum length.
func (f Field) MinLengthValue() (int, bool) {
	return f.MinLength.Value()
}

// MaxLengthValue returns the parsed maximum length.
func (f Field) MaxLengthValue() (int, bool) {
	return f.MaxLength.Value()
}

// Document is the whole form: a name plus the ordered field sequence. Order is
// the display order within each step.
type Document struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{Name: d.Name, Fields: make([]Field, len(d.Fields))}
	for i, field := range d.Fields {
		out.Fields[i] = field.Clone()
	}
	return out
}

// IndexOf returns the position of the field with id, or -1.
func (d Document) IndexOf(id string) int {
	for i, field := range d.Fields {
		if field.ID == id {
			return i
		}
	}
	return -1
}

// Field looks up a field by id.
func (d Document) Field(id string) (Field, bool) {
	idx := d.IndexOf(id)
	if idx < 0 {
		return Field{}, false
	}
	return d.Fields[idx], true
}

// PaletteItem is one entry of the field palette.
type PaletteItem struct {
	Type  FieldType `json:"type"`
	Label string    `json:"label"`
}

// Palette lists the available controls in display order.
func Palette() []PaletteItem {
	types := AllFieldTypes()
	out := make([]PaletteItem, 0, len(types))
	for _, t := range types {
		out = append(out, PaletteItem{Type: t, Label: t.Label()})
	}
	return out
}
