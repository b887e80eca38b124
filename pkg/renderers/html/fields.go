package html

import (
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

type optionView struct {
	Value   string
	Label   string
	Checked bool
}

type fieldView struct {
	ID          string
	Type        string
	Partial     string
	InputType   string
	Label       string
	Placeholder string
	HelpText    string
	Required    bool
	MinLength   string
	MaxLength   string
	Pattern     string
	Value       string
	Checked     bool
	Options     []optionView
	Error       string
}

// partials picks the template branch and input type for every field type.
type partials struct{}

var _ model.Visitor[fieldView] = partials{}

func input(kind string) fieldView { return fieldView{Partial: "input", InputType: kind} }

func (partials) Text(model.Field) fieldView     { return input("text") }
func (partials) Textarea(model.Field) fieldView { return fieldView{Partial: "textarea"} }
func (partials) Dropdown(model.Field) fieldView { return fieldView{Partial: "select"} }
func (partials) Checkbox(model.Field) fieldView {
	return fieldView{Partial: "choices", InputType: "checkbox"}
}
func (partials) Radio(model.Field) fieldView  { return fieldView{Partial: "choices", InputType: "radio"} }
func (partials) Date(model.Field) fieldView   { return input("date") }
func (partials) Time(model.Field) fieldView   { return input("time") }
func (partials) Email(model.Field) fieldView  { return input("email") }
func (partials) Number(model.Field) fieldView { return input("number") }
func (partials) Phone(model.Field) fieldView  { return input("tel") }
func (partials) File(model.Field) fieldView   { return input("file") }
func (partials) Toggle(model.Field) fieldView { return fieldView{Partial: "toggle"} }

func buildField(field model.Field, value any, errMsg string) (fieldView, error) {
	view, err := model.Visit[fieldView](field, partials{})
	if err != nil {
		return fieldView{}, err
	}
	view.ID = field.ID
	view.Type = string(field.Type)
	view.Label = sanitizeText(field.Label)
	view.Placeholder = sanitizeText(field.Placeholder)
	view.HelpText = sanitizeText(field.HelpText)
	view.Required = field.Required
	view.Error = errMsg
	if field.Type.IsTextLike() {
		if n, ok := field.MinLengthValue(); ok {
			view.MinLength = fmt.Sprint(n)
		}
		if n, ok := field.MaxLengthValue(); ok {
			view.MaxLength = fmt.Sprint(n)
		}
		view.Pattern = field.Pattern
	}

	switch v := value.(type) {
	case string:
		if field.Type != model.FieldTypeFile {
			view.Value = v
		}
	case bool:
		view.Checked = v
	}

	selected := selection(value)
	for _, option := range field.Options {
		view.Options = append(view.Options, optionView{
			Value:   option,
			Label:   sanitizeText(option),
			Checked: selected[option],
		})
	}
	return view, nil
}

// context exposes the view to templates. pongo2 resolves struct fields by
// their Go names, so templates get a plain map with snake_case keys instead.
func (v fieldView) context() map[string]any {
	options := make([]map[string]any, 0, len(v.Options))
	for _, o := range v.Options {
		options = append(options, map[string]any{
			"value":   o.Value,
			"label":   o.Label,
			"checked": o.Checked,
		})
	}
	return map[string]any{
		"id":          v.ID,
		"type":        v.Type,
		"partial":     v.Partial,
		"input_type":  v.InputType,
		"label":       v.Label,
		"placeholder": v.Placeholder,
		"help_text":   v.HelpText,
		"required":    v.Required,
		"min_length":  v.MinLength,
		"max_length":  v.MaxLength,
		"pattern":     v.Pattern,
		"value":       v.Value,
		"checked":     v.Checked,
		"options":     options,
		"error":       v.Error,
	}
}

func selection(value any) map[string]bool {
	out := map[string]bool{}
	switch v := value.(type) {
	case string:
		if v != "" {
			out[v] = true
		}
	case []string:
		for _, item := range v {
			out[item] = true
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out[s] = true
			}
		}
	}
	return out
}

// carriedValues lists the values of fields outside step as hidden inputs so
// a posted step keeps the answers given on the other steps.
func carriedValues(fields []model.Field, step int, values map[string]any) []map[string]any {
	out := make([]map[string]any, 0)
	for _, field := range fields {
		if field.Step == step || field.Type == model.FieldTypeFile {
			continue
		}
		for _, value := range postedValues(values[field.ID]) {
			out = append(out, map[string]any{"name": field.ID, "value": value})
		}
	}
	return out
}

func postedValues(value any) []string {
	switch v := value.(type) {
	case string:
		if v != "" {
			return []string{v}
		}
	case bool:
		if v {
			return []string{"true"}
		}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
