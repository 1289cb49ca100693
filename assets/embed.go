// Package assets embeds the web viewer resources.
package assets

import _ "embed"

// Index is the minified viewer page, regenerated by cmd/minify.
//
//go:embed index.html
var Index []byte

// Favicon is the site icon.
//
//go:embed favicon.svg
var Favicon []byte
