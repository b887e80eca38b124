package formbuilder

import (
	"io/fs"

	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/theme"
)

// EmbeddedTemplates exposes the built-in HTML renderer templates so callers
// can copy or extend them.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// ThemeAssetsFS exposes the stylesheets of the built-in theme.
//
// Typical mount:
//
//	mux.Handle(theme.AssetPrefix+"/",
//	  http.StripPrefix(theme.AssetPrefix+"/",
//	    http.FileServerFS(formbuilder.ThemeAssetsFS()),
//	  ),
//	)
func ThemeAssetsFS() fs.FS {
	return theme.AssetsFS()
}
