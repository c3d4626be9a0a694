// Package assets embeds the dashboard page so the installed binary serves
// it regardless of working directory.
package assets

import _ "embed"

// IndexHTML is the embedded single-page dashboard.
//
//go:embed index.html
var IndexHTML []byte
