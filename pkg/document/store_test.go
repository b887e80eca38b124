package document_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/document"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/steps"
)

func sequentialIDs() model.IDGenerator {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("f%d", n), nil
	}
}

type recorder struct {
	docs []model.Document
}

func (r *recorder) DocumentChanged(doc model.Document) {
	r.docs = append(r.docs, doc)
}

func ids(fields []model.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.ID)
	}
	return out
}

func newStore(t *testing.T, rec *recorder, n int) *document.Store {
	t.Helper()
	store := document.New(model.Document{Name: "demo"},
		document.WithIDGenerator(sequentialIDs()),
		document.WithObserver(rec),
	)
	for i := 0; i < n; i++ {
		if _, err := store.AddField(model.FieldTypeText, 1); err != nil {
			t.Fatalf("add field: %v", err)
		}
	}
	return store
}

func TestStore_AddFieldSelectsAndNotifies(t *testing.T) {
	rec := &recorder{}
	store := newStore(t, rec, 0)

	field, err := store.AddField(model.FieldTypeRadio, 2)
	if err != nil {
		t.Fatalf("add field: %v", err)
	}
	if diff := cmp.Diff([]string{"Option 1", "Option 2"}, field.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	selected, ok := store.Selected()
	if !ok || selected.ID != field.ID {
		t.Fatalf("expected new field selected, got %+v (%v)", selected, ok)
	}
	if len(rec.docs) != 1 || len(rec.docs[0].Fields) != 1 {
		t.Fatalf("expected one notification with one field, got %+v", rec.docs)
	}
}

func TestStore_UpdateField(t *testing.T) {
	rec := &recorder{}
	store := newStore(t, rec, 1)

	ok := store.UpdateField("f1", document.Patch{
		Label:     document.String("Name"),
		Required:  document.Bool(true),
		MinLength: document.Len("2"),
	})
	if !ok {
		t.Fatalf("expected update to apply")
	}

	got, _ := store.Field("f1")
	want := model.Field{ID: "f1", Type: model.FieldTypeText, Label: "Name", Required: true, MinLength: "2", Options: []string{}, Step: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("field mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_UpdateMissingFieldIsSilent(t *testing.T) {
	rec := &recorder{}
	store := newStore(t, rec, 1)
	before := len(rec.docs)

	if store.UpdateField("nope", document.Patch{Label: document.String("x")}) {
		t.Fatalf("expected no-op for unknown id")
	}
	if len(rec.docs) != before {
		t.Fatalf("no-op update must not notify observers")
	}
}

func TestStore_ValidateAndUpdateRejectsBadPattern(t *testing.T) {
	store := newStore(t, &recorder{}, 1)

	_, err := store.ValidateAndUpdate("f1", document.Patch{Pattern: document.String("(")})
	if err == nil {
		t.Fatalf("expected pattern error")
	}

	_, err = store.ValidateAndUpdate("f1", document.Patch{MaxLength: document.Len("ten")})
	if !errors.Is(err, document.ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}

	got, _ := store.Field("f1")
	if got.Pattern != "" || got.MaxLength != "" {
		t.Fatalf("rejected patch must not apply: %+v", got)
	}
}

func TestStore_DeleteFieldClearsSelection(t *testing.T) {
	store := newStore(t, &recorder{}, 2)
	store.Select("f1")

	if !store.DeleteField("f1") {
		t.Fatalf("expected delete")
	}
	if _, ok := store.Selected(); ok {
		t.Fatalf("selection should be cleared")
	}
	if diff := cmp.Diff([]string{"f2"}, ids(store.Fields())); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Reorder(t *testing.T) {
	rec := &recorder{}
	store := newStore(t, rec, 4)

	if !store.Reorder("f1", 2) {
		t.Fatalf("expected move")
	}
	if diff := cmp.Diff([]string{"f2", "f3", "f1", "f4"}, ids(store.Fields())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	if !store.Reorder("f4", 0) {
		t.Fatalf("expected move")
	}
	if diff := cmp.Diff([]string{"f4", "f2", "f3", "f1"}, ids(store.Fields())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	if !store.Reorder("f2", 99) {
		t.Fatalf("expected clamped move")
	}
	if diff := cmp.Diff([]string{"f4", "f3", "f1", "f2"}, ids(store.Fields())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ReorderOntoSelfIsNoop(t *testing.T) {
	rec := &recorder{}
	store := newStore(t, rec, 3)
	before := store.Fields()
	notifications := len(rec.docs)

	if store.Reorder("f2", 1) {
		t.Fatalf("expected no-op")
	}
	if store.Reorder("missing", 0) {
		t.Fatalf("expected no-op for unknown id")
	}
	if diff := cmp.Diff(before, store.Fields()); diff != "" {
		t.Fatalf("sequence changed (-want +got):\n%s", diff)
	}
	if len(rec.docs) != notifications {
		t.Fatalf("no-op reorder must not notify")
	}
}

func TestStore_OptionEditing(t *testing.T) {
	store := document.New(model.Document{}, document.WithIDGenerator(sequentialIDs()))
	field, err := store.AddField(model.FieldTypeCheckbox, 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	store.AddOption(field.ID)
	store.SetOption(field.ID, 0, "Red")
	store.RemoveOption(field.ID, 1)

	got, _ := store.Field(field.ID)
	if diff := cmp.Diff([]string{"Red", "New Option"}, got.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	text, _ := store.AddField(model.FieldTypeText, 1)
	if store.AddOption(text.ID) {
		t.Fatalf("text fields have no options")
	}
}

func TestStore_DeleteStep(t *testing.T) {
	store := document.New(model.Document{}, document.WithIDGenerator(sequentialIDs()))
	for _, step := range []int{1, 2, 2, 3} {
		if _, err := store.AddField(model.FieldTypeText, step); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	active, err := store.DeleteStep(2)
	if err != nil {
		t.Fatalf("delete step: %v", err)
	}
	if active != 1 {
		t.Fatalf("expected active step 1, got %d", active)
	}
	if diff := cmp.Diff([]int{1, 3}, store.Steps()); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"f1", "f4"}, ids(store.Fields())); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_DeleteOnlyStepLeavesDocument(t *testing.T) {
	rec := &recorder{}
	store := newStore(t, rec, 2)
	notifications := len(rec.docs)

	_, err := store.DeleteStep(1)
	if !errors.Is(err, steps.ErrMinimumStep) {
		t.Fatalf("expected ErrMinimumStep, got %v", err)
	}
	if len(store.Fields()) != 2 || len(rec.docs) != notifications {
		t.Fatalf("document must be unchanged")
	}
}

func TestStore_AddStep(t *testing.T) {
	store := newStore(t, &recorder{}, 1)
	if diff := cmp.Diff([]int{1, 2}, store.AddStep()); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ReadsAreCopies(t *testing.T) {
	store := newStore(t, &recorder{}, 1)
	fields := store.Fields()
	fields[0].Label = "mutated"

	got, _ := store.Field("f1")
	if got.Label != "" {
		t.Fatalf("store aliased returned slice")
	}
}
