package html_test

import (
	"context"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func newRenderer(t *testing.T) *html.Renderer {
	t.Helper()
	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func sampleDoc() model.Document {
	return model.Document{
		Name: "Signup",
		Fields: []model.Field{
			{ID: "name", Type: model.FieldTypeText, Label: "Name", Required: true, MinLength: "2", Step: 1},
			{ID: "plan", Type: model.FieldTypeRadio, Label: "Plan", Options: []string{"Free", "Pro"}, Step: 1},
			{ID: "bio", Type: model.FieldTypeTextarea, Label: "Bio", HelpText: "Tell us more", Step: 2},
			{ID: "news", Type: model.FieldTypeToggle, Label: "Newsletter", Step: 2},
		},
	}
}

func render1(t *testing.T, doc model.Document, opts render.RenderOptions) string {
	t.Helper()
	out, err := newRenderer(t).Render(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func assertNotContains(t *testing.T, out string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(out, u) {
			t.Fatalf("output unexpectedly contains %q:\n%s", u, out)
		}
	}
}

func TestRender_FirstStep(t *testing.T) {
	out := render1(t, sampleDoc(), render.RenderOptions{
		Values: validation.Values{"plan": "Pro"},
		Errors: validation.ErrorMap{"name": validation.MessageRequired},
	})

	assertContains(t, out,
		"Step 1 of 2",
		`<input id="name" name="name" type="text" required minlength="2">`,
		`value="Pro" checked`,
		validation.MessageRequired,
		`value="next"`,
	)
	assertNotContains(t, out, "Bio", `value="back"`, `value="submit"`)
}

func TestRender_LastStep(t *testing.T) {
	out := render1(t, sampleDoc(), render.RenderOptions{
		Step:   2,
		Values: validation.Values{"bio": "hello", "news": true},
	})

	assertContains(t, out,
		"Step 2 of 2",
		">hello</textarea>",
		`role="switch" name="news" value="true" checked`,
		"Tell us more",
		`value="back"`,
		`value="submit"`,
	)
	assertNotContains(t, out, `value="next"`)
}

func TestRender_UnknownStepFallsBackToFirst(t *testing.T) {
	out := render1(t, sampleDoc(), render.RenderOptions{Step: 9})
	assertContains(t, out, "Step 1 of 2")
}

func TestRender_States(t *testing.T) {
	out := render1(t, model.Document{}, render.RenderOptions{})
	assertContains(t, out, render.EmptyMessage)
	assertNotContains(t, out, "<form")

	out = render1(t, sampleDoc(), render.RenderOptions{Waiting: true})
	assertContains(t, out, render.WaitingMessage)
	assertNotContains(t, out, "<form")

	out = render1(t, sampleDoc(), render.RenderOptions{Step: 2, Submitted: true})
	assertContains(t, out, render.SubmittedMessage)
}

func TestRender_SanitizesAuthorText(t *testing.T) {
	doc := model.Document{Fields: []model.Field{{
		ID:      "x",
		Type:    model.FieldTypeDropdown,
		Label:   `<script>alert(1)</script>Colour & shade`,
		Options: []string{`<b>Red</b>`, "Blue"},
		Step:    1,
	}}}
	out := render1(t, doc, render.RenderOptions{Values: validation.Values{"x": `<b>Red</b>`}})

	assertNotContains(t, out, "<script>", "<b>")
	assertContains(t, out,
		"Colour &amp; shade",
		`<option value="&lt;b&gt;Red&lt;/b&gt;" selected>Red</option>`,
	)
}

func TestRender_CarriesOtherStepValues(t *testing.T) {
	doc := sampleDoc()
	doc.Fields = append(doc.Fields, model.Field{ID: "tags", Type: model.FieldTypeCheckbox, Options: []string{"a", "b"}, Step: 1})
	out := render1(t, doc, render.RenderOptions{
		Step:   2,
		Values: validation.Values{"name": "Ada", "plan": "", "tags": []string{"a", "b"}, "bio": "hi", "news": false},
	})

	assertContains(t, out,
		`<input type="hidden" name="_step" value="2">`,
		`<input type="hidden" name="name" value="Ada">`,
		`<input type="hidden" name="tags" value="a">`,
		`<input type="hidden" name="tags" value="b">`,
	)
	assertNotContains(t, out, `type="hidden" name="plan"`, `type="hidden" name="bio"`, `type="hidden" name="news"`)
}

func TestRender_Theme(t *testing.T) {
	out := render1(t, sampleDoc(), render.RenderOptions{Theme: &theme.RendererConfig{
		Theme:   "formbuilder",
		Variant: "dark",
		CSSVars: map[string]string{"--fb-bg": "#111827", "--fb-fg": "#f9fafb"},
	}})
	assertContains(t, out, `data-variant="dark"`, `style="--fb-bg: #111827; --fb-fg: #f9fafb;"`)
}

func TestRenderDocumentAndNotFound(t *testing.T) {
	r := newRenderer(t)
	page, err := r.RenderDocument(context.Background(), sampleDoc(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render document: %v", err)
	}
	assertContains(t, string(page), "<!DOCTYPE html>", "<title>Signup</title>", `<div class="fb-form"`)

	missing, err := r.RenderNotFound(context.Background())
	if err != nil {
		t.Fatalf("render not found: %v", err)
	}
	assertContains(t, string(missing), render.NotFoundMessage)
}

func TestRenderDocumentLinksThemeStylesheet(t *testing.T) {
	page, err := newRenderer(t).RenderDocument(context.Background(), sampleDoc(), render.RenderOptions{
		Theme: &theme.RendererConfig{
			Variant:  "dark",
			AssetURL: func(key string) string { return "/assets/" + key + ".css" },
		},
	})
	if err != nil {
		t.Fatalf("render document: %v", err)
	}
	assertContains(t, string(page), `data-theme="dark"`, `<link rel="stylesheet" href="/assets/html.stylesheet.css">`)

	plain, _ := newRenderer(t).RenderDocument(context.Background(), sampleDoc(), render.RenderOptions{})
	assertNotContains(t, string(plain), "<link")
}

func TestRenderFixtureSteps(t *testing.T) {
	doc := testsupport.LoadDocument(t, "signup.json")

	out := render1(t, doc, render.RenderOptions{Step: 2})
	assertContains(t, out, "Step 2 of 3", `type="checkbox" name="topics" value="Zig"`, `type="radio" name="plan" value="Pro"`, "Back", "Next")
	assertNotContains(t, out, "full-name", "Submit")

	out = render1(t, doc, render.RenderOptions{Step: 4, Values: validation.Values{"code": "AB12"}})
	assertContains(t, out, "Step 3 of 3", `maxlength="6"`, `pattern="^[A-Z0-9]+$"`, `value="AB12"`, "Submit")
}
