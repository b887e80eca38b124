package theme

import (
	"embed"
	"io/fs"
)

//go:embed assets/*.css
var embeddedAssets embed.FS

// AssetPrefix is the URL path the built-in manifest serves its files under.
const AssetPrefix = "/assets/themes/" + Name

// AssetsFS exposes the stylesheets referenced by Manifest.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
