package formbuilder

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedTemplatesContainPage(t *testing.T) {
	for _, name := range []string{"document.tmpl", "page.tmpl", "field.tmpl"} {
		if _, err := fs.Stat(EmbeddedTemplates(), name); err != nil {
			t.Fatalf("expected %s to be embedded: %v", name, err)
		}
	}
}

func TestThemeAssetsFSContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(ThemeAssetsFS(), "form.css")
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), "--accent") {
		t.Fatalf("expected stylesheet to use theme tokens")
	}
}

func TestRenderHTML(t *testing.T) {
	doc := Document{Name: "Quick", Fields: []Field{{ID: "a", Type: "text", Label: "Alpha", Step: 1}}}
	out, err := RenderHTML(context.Background(), doc, RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "<title>Quick</title>") || !strings.Contains(string(out), "Alpha") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
