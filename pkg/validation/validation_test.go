package validation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func TestValidate_RuleOrder(t *testing.T) {
	cases := []struct {
		name  string
		field model.Field
		value any
		want  string
	}{
		{
			name:  "required short-circuits length and pattern",
			field: model.Field{ID: "a", Type: model.FieldTypeText, Required: true, MinLength: "3", Pattern: `^\d+$`},
			value: "",
			want:  validation.MessageRequired,
		},
		{
			name:  "required with missing value",
			field: model.Field{ID: "a", Type: model.FieldTypeText, Required: true},
			value: nil,
			want:  validation.MessageRequired,
		},
		{
			name:  "min length before pattern",
			field: model.Field{ID: "a", Type: model.FieldTypeText, MinLength: "3", Pattern: `^\d+$`},
			value: "ab",
			want:  "Minimum 3 characters.",
		},
		{
			name:  "max length before pattern",
			field: model.Field{ID: "a", Type: model.FieldTypeText, MaxLength: "2", Pattern: `^\d+$`},
			value: "abc",
			want:  "Maximum 2 characters.",
		},
		{
			name:  "pattern mismatch",
			field: model.Field{ID: "a", Type: model.FieldTypeText, Pattern: `^\d{3}$`},
			value: "12",
			want:  validation.MessageInvalidFormat,
		},
		{
			name:  "pattern match",
			field: model.Field{ID: "a", Type: model.FieldTypeText, Pattern: `^\d{3}$`},
			value: "123",
			want:  "",
		},
		{
			name:  "length counts characters not bytes",
			field: model.Field{ID: "a", Type: model.FieldTypeText, MaxLength: "3"},
			value: "héé",
			want:  "",
		},
		{
			name:  "toggle required and off",
			field: model.Field{ID: "a", Type: model.FieldTypeToggle, Required: true},
			value: false,
			want:  validation.MessageRequired,
		},
		{
			name:  "checkbox required with no selection",
			field: model.Field{ID: "a", Type: model.FieldTypeCheckbox, Required: true, Options: []string{"x"}},
			value: []string{},
			want:  validation.MessageRequired,
		},
		{
			name:  "checkbox selection skips text rules",
			field: model.Field{ID: "a", Type: model.FieldTypeCheckbox, Required: true, MinLength: "5", Options: []string{"x"}},
			value: []string{"x"},
			want:  "",
		},
		{
			name:  "unconstrained field",
			field: model.Field{ID: "a", Type: model.FieldTypeText},
			value: "",
			want:  "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := validation.Validate([]model.Field{tc.field}, validation.Values{"a": tc.value})
			want := validation.ErrorMap{}
			if tc.want != "" {
				want["a"] = tc.want
			}
			if diff := cmp.Diff(want, errs); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_OnlyChecksSuppliedFields(t *testing.T) {
	fields := []model.Field{
		{ID: "a", Type: model.FieldTypeText, Required: true, Step: 1},
	}
	values := validation.Values{"other": ""}

	errs := validation.Validate(fields, values)
	if diff := cmp.Diff(validation.ErrorMap{"a": validation.MessageRequired}, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_ReturnsFreshMap(t *testing.T) {
	fields := []model.Field{{ID: "a", Type: model.FieldTypeText, Required: true}}
	v := validation.New()

	first := v.Validate(fields, nil)
	second := v.Validate(fields, validation.Values{"a": "ok"})

	if first.Empty() {
		t.Fatalf("expected first pass to fail")
	}
	if !second.Empty() {
		t.Fatalf("expected second pass to be clean, got %v", second)
	}
}

func TestValidate_MalformedPatternPolicies(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	field := model.Field{ID: "a", Type: model.FieldTypeText, Pattern: `([a-z`}

	strict := validation.New(validation.WithLogger(zap.New(core)))
	for i := 0; i < 3; i++ {
		errs := strict.Validate([]model.Field{field}, validation.Values{"a": "abc"})
		if errs["a"] != validation.MessageInvalidFormat {
			t.Fatalf("expected fail-closed error, got %v", errs)
		}
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one warning for the cached pattern, got %d", logs.Len())
	}

	lenient := validation.New(validation.WithPatternPolicy(validation.PatternSkip))
	if errs := lenient.Validate([]model.Field{field}, validation.Values{"a": "abc"}); !errs.Empty() {
		t.Fatalf("expected skip policy to pass, got %v", errs)
	}
}

func TestCheckPattern(t *testing.T) {
	if err := validation.CheckPattern(`^\d{3}$`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validation.CheckPattern(""); err != nil {
		t.Fatalf("empty pattern should be accepted: %v", err)
	}
	if err := validation.CheckPattern(`(`); err == nil {
		t.Fatalf("expected error for malformed pattern")
	}
}

func TestValues_Clone(t *testing.T) {
	src := validation.Values{"a": []string{"x"}, "b": "y"}
	clone := src.Clone()
	clone["a"].([]string)[0] = "changed"
	if src["a"].([]string)[0] != "x" {
		t.Fatalf("clone shares option slice")
	}
}
