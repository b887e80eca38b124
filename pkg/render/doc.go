// Package render defines the renderer contract shared by the HTML and
// terminal previews, plus a name-keyed registry.
package render
