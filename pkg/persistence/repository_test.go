package persistence_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/segmentio/ksuid"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/persistence"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func sampleDoc() model.Document {
	return model.Document{
		Name: "Signup",
		Fields: []model.Field{
			{ID: "a", Type: model.FieldTypeText, Label: "Name", Required: true, Options: []string{}, MinLength: "2", Step: 1},
			{ID: "b", Type: model.FieldTypeRadio, Label: "Plan", Options: []string{"Free", "Pro"}, Step: 2},
		},
	}
}

func TestRepository_LiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := persistence.New(storage.NewMemory())

	empty, err := repo.LoadLive(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(empty.Fields) != 0 || empty.Fields == nil {
		t.Fatalf("expected empty non-nil fields, got %#v", empty.Fields)
	}

	doc := sampleDoc()
	if err := repo.SaveLive(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.LoadLive(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_LoadsLegacyLiveRecord(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	if err := mem.Save(ctx, persistence.KeyLive, testsupport.MustReadFixture(t, "legacy_live.json")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := persistence.New(mem).LoadLive(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := model.Document{Fields: []model.Field{
		{ID: "a", Type: model.FieldTypeText, Label: "First", Required: true, Options: []string{}, Step: 1},
		{ID: "b", Type: model.FieldTypeDropdown, Label: "Second", Options: []string{}, MaxLength: "12", Step: 1},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_StoredShape(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	repo := persistence.New(mem)
	if err := repo.SaveTemplate(ctx, sampleDoc()); err != nil {
		t.Fatalf("save template: %v", err)
	}

	raw, err := mem.Load(ctx, persistence.KeyTemplates)
	if err != nil {
		t.Fatalf("load raw: %v", err)
	}
	var decoded map[string][]map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("stored templates are not a name to field list map: %v", err)
	}
	if len(decoded["Signup"]) != 2 || decoded["Signup"][0]["minLength"] != "2" {
		t.Fatalf("unexpected stored shape: %s", raw)
	}
}

func TestRepository_Templates(t *testing.T) {
	ctx := context.Background()
	repo := persistence.New(storage.NewMemory())

	if err := repo.SaveTemplate(ctx, model.Document{}); !errors.Is(err, persistence.ErrUnnamed) {
		t.Fatalf("expected ErrUnnamed, got %v", err)
	}

	doc := sampleDoc()
	other := model.Document{Name: "Appointment", Fields: []model.Field{}}
	for _, d := range []model.Document{doc, other} {
		if err := repo.SaveTemplate(ctx, d); err != nil {
			t.Fatalf("save template: %v", err)
		}
	}

	names, err := repo.TemplateNames(ctx)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if diff := cmp.Diff([]string{"Appointment", "Signup"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	opened, err := repo.OpenTemplate(ctx, "Signup")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	live, _ := repo.LoadLive(ctx)
	if diff := cmp.Diff(opened, live); diff != "" {
		t.Fatalf("opening a template must make it live (-want +got):\n%s", diff)
	}

	if err := repo.DeleteTemplate(ctx, "Signup"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = repo.Template(ctx, "Signup")
	var nf *persistence.NotFoundError
	if !errors.As(err, &nf) || !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := repo.DeleteTemplate(ctx, "Signup"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRepository_Share(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := persistence.New(storage.NewMemory(), persistence.WithClock(clockwork.NewFakeClockAt(now)))

	doc := sampleDoc()
	id, err := repo.Share(ctx, doc)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	parsed, err := ksuid.Parse(id)
	if err != nil {
		t.Fatalf("share id is not a ksuid: %v", err)
	}
	if !parsed.Time().Equal(now) {
		t.Fatalf("share id time = %v, want %v", parsed.Time(), now)
	}

	got, err := repo.OpenShared(ctx, id)
	if err != nil {
		t.Fatalf("open shared: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Fatalf("shared mismatch (-want +got):\n%s", diff)
	}
	live, _ := repo.LoadLive(ctx)
	if diff := cmp.Diff(doc.Fields, live.Fields); diff != "" {
		t.Fatalf("opening a share must copy its fields to liveForm (-want +got):\n%s", diff)
	}

	if _, err := repo.Shared(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if got := persistence.ShareURL("https://forms.example.com/", id); got != "https://forms.example.com/form/"+id {
		t.Fatalf("unexpected share url %q", got)
	}
}

func TestRepository_SharedWithoutName(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	if err := mem.Save(ctx, persistence.KeyShared, []byte(`{"x1":{"fields":[]}}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	doc, err := persistence.New(mem).Shared(ctx, "x1")
	if err != nil {
		t.Fatalf("shared: %v", err)
	}
	if doc.Name != persistence.UntitledForm {
		t.Fatalf("expected %q, got %q", persistence.UntitledForm, doc.Name)
	}
}

func TestRepository_CorruptState(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	repo := persistence.New(mem)
	if err := mem.Save(ctx, persistence.KeyLive, []byte(`[{"id":`)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	doc, err := repo.LoadLive(ctx)
	var corrupt *persistence.CorruptStateError
	if !errors.As(err, &corrupt) || !errors.Is(err, persistence.ErrCorruptState) {
		t.Fatalf("expected CorruptStateError, got %v", err)
	}
	if corrupt.Key != persistence.KeyLive {
		t.Fatalf("unexpected key %q", corrupt.Key)
	}
	if len(doc.Fields) != 0 {
		t.Fatalf("expected empty fallback document, got %+v", doc)
	}

}

func TestRepository_RecoversCorruptMaps(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	repo := persistence.New(mem)
	if err := mem.Save(ctx, persistence.KeyTemplates, []byte(`{not json`)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := repo.SaveTemplate(ctx, sampleDoc())
	var corrupt *persistence.CorruptStateError
	if !errors.As(err, &corrupt) || corrupt.Key != persistence.KeyTemplates {
		t.Fatalf("expected the corruption reported once, got %v", err)
	}
	if err := repo.SaveTemplate(ctx, sampleDoc()); err != nil {
		t.Fatalf("second save must succeed, got %v", err)
	}
	names, err := repo.TemplateNames(ctx)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if diff := cmp.Diff([]string{sampleDoc().Name}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	if err := mem.Save(ctx, persistence.KeyTemplates, []byte(`[`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.DeleteTemplate(ctx, "x"); !errors.Is(err, persistence.ErrCorruptState) {
		t.Fatalf("expected corruption from delete, got %v", err)
	}
	if names, err := repo.TemplateNames(ctx); err != nil || len(names) != 0 {
		t.Fatalf("expected reset templates, got %v (%v)", names, err)
	}

	if err := mem.Save(ctx, persistence.KeyShared, []byte(`nope`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	id, err := repo.Share(ctx, sampleDoc())
	if !errors.Is(err, persistence.ErrCorruptState) || id == "" {
		t.Fatalf("expected share id with corruption report, got %q (%v)", id, err)
	}
	if _, err := repo.Shared(ctx, id); err != nil {
		t.Fatalf("shared form must be readable, got %v", err)
	}
}

func TestRepository_Theme(t *testing.T) {
	ctx := context.Background()
	repo := persistence.New(storage.NewMemory())

	theme, err := repo.Theme(ctx)
	if err != nil || theme != persistence.ThemeLight {
		t.Fatalf("expected light default, got %q (%v)", theme, err)
	}
	if err := repo.SetTheme(ctx, persistence.ThemeDark); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if theme, _ := repo.Theme(ctx); theme != persistence.ThemeDark {
		t.Fatalf("expected dark, got %q", theme)
	}
	if err := repo.SetTheme(ctx, "sepia"); !errors.Is(err, persistence.ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
}
