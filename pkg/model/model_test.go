package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func fixedID(id string) model.IDGenerator {
	return func() (string, error) { return id, nil }
}

func TestNewField_Defaults(t *testing.T) {
	cases := []struct {
		typ     model.FieldType
		options []string
	}{
		{model.FieldTypeDropdown, []string{"Option 1", "Option 2"}},
		{model.FieldTypeCheckbox, []string{"Option 1", "Option 2"}},
		{model.FieldTypeRadio, []string{"Option 1", "Option 2"}},
		{model.FieldTypeText, []string{}},
		{model.FieldTypeToggle, []string{}},
	}

	for _, tc := range cases {
		t.Run(string(tc.typ), func(t *testing.T) {
			field, err := model.NewFieldWithID(tc.typ, 2, fixedID("f1"))
			if err != nil {
				t.Fatalf("new field: %v", err)
			}
			want := model.Field{ID: "f1", Type: tc.typ, Step: 2, Options: tc.options}
			if diff := cmp.Diff(want, field); diff != "" {
				t.Fatalf("field mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewField_UniqueIDs(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		field, err := model.NewField(model.FieldTypeText, 1)
		if err != nil {
			t.Fatalf("new field: %v", err)
		}
		if _, dup := seen[field.ID]; dup {
			t.Fatalf("duplicate id %q", field.ID)
		}
		seen[field.ID] = struct{}{}
	}
}

func TestNewField_RejectsUnknownType(t *testing.T) {
	_, err := model.NewField("slider", 1)
	if !errors.Is(err, model.ErrUnknownFieldType) {
		t.Fatalf("expected ErrUnknownFieldType, got %v", err)
	}
}

func TestNewField_ClampsStep(t *testing.T) {
	field, err := model.NewFieldWithID(model.FieldTypeEmail, 0, fixedID("x"))
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	if field.Step != 1 {
		t.Fatalf("expected step 1, got %d", field.Step)
	}
}

func TestParseFieldType(t *testing.T) {
	got, err := model.ParseFieldType("  DropDown ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != model.FieldTypeDropdown {
		t.Fatalf("expected dropdown, got %q", got)
	}
}

func TestDocument_JSONRoundTrip(t *testing.T) {
	doc := model.Document{
		Name: "Signup",
		Fields: []model.Field{
			{ID: "a", Type: model.FieldTypeText, Label: "Name", Placeholder: "Jane", Required: true, Options: []string{}, MinLength: "2", MaxLength: "40", Pattern: `^\w+$`, Step: 1},
			{ID: "b", Type: model.FieldTypeCheckbox, Label: "Topics", HelpText: "Pick any", Options: []string{"Go", "Rust"}, Step: 2},
			{ID: "c", Type: model.FieldTypeToggle, Options: []string{}, Step: 2},
		},
	}

	payload, err := json.Marshal(doc.Fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields []model.Field
	if err := json.Unmarshal(payload, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(doc.Fields, fields); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestField_JSONShape(t *testing.T) {
	field := model.Field{ID: "a", Type: model.FieldTypeText, Step: 1}
	payload, err := json.Marshal(field)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]any{
		"id":          "a",
		"type":        "text",
		"label":       "",
		"placeholder": "",
		"required":    false,
		"helpText":    "",
		"options":     []any{},
		"minLength":   "",
		"maxLength":   "",
		"pattern":     "",
		"step":        float64(1),
	}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Fatalf("json shape mismatch (-want +got):\n%s", diff)
	}
}

func TestField_UnmarshalLenientRecords(t *testing.T) {
	var field model.Field
	if err := json.Unmarshal([]byte(`{"id":"a","type":"text","minLength":3,"maxLength":null}`), &field); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n, ok := field.MinLengthValue(); !ok || n != 3 {
		t.Fatalf("expected minLength 3, got %d (%v)", n, ok)
	}
	if field.MaxLength.IsSet() {
		t.Fatalf("expected maxLength unset")
	}
	if field.Step != 1 {
		t.Fatalf("expected default step 1, got %d", field.Step)
	}
}

func TestLength_Value(t *testing.T) {
	cases := map[model.Length]struct {
		n  int
		ok bool
	}{
		"":    {0, false},
		"5":   {5, true},
		" 7 ": {7, true},
		"-1":  {0, false},
		"abc": {0, false},
		"0":   {0, true},
	}
	for in, want := range cases {
		n, ok := in.Value()
		if n != want.n || ok != want.ok {
			t.Errorf("Length(%q).Value() = %d, %v; want %d, %v", in, n, ok, want.n, want.ok)
		}
	}
}

type typeNamer struct{}

func (typeNamer) Text(model.Field) string     { return "text" }
func (typeNamer) Textarea(model.Field) string { return "textarea" }
func (typeNamer) Dropdown(model.Field) string { return "dropdown" }
func (typeNamer) Checkbox(model.Field) string { return "checkbox" }
func (typeNamer) Radio(model.Field) string    { return "radio" }
func (typeNamer) Date(model.Field) string     { return "date" }
func (typeNamer) Time(model.Field) string     { return "time" }
func (typeNamer) Email(model.Field) string    { return "email" }
func (typeNamer) Number(model.Field) string   { return "number" }
func (typeNamer) Phone(model.Field) string    { return "phone" }
func (typeNamer) File(model.Field) string     { return "file" }
func (typeNamer) Toggle(model.Field) string   { return "toggle" }

func TestVisit_CoversEveryType(t *testing.T) {
	for _, typ := range model.AllFieldTypes() {
		got, err := model.Visit[string](model.Field{Type: typ}, typeNamer{})
		if err != nil {
			t.Fatalf("visit %s: %v", typ, err)
		}
		if got != string(typ) {
			t.Fatalf("visit %s dispatched to %s", typ, got)
		}
	}

	if _, err := model.Visit[string](model.Field{Type: "bogus"}, typeNamer{}); !errors.Is(err, model.ErrUnknownFieldType) {
		t.Fatalf("expected ErrUnknownFieldType, got %v", err)
	}
}
