// Package runtimeembed provides the embedded module-loader runtime that
// wraps every emitted chunk.
package runtimeembed

import (
	"embed"
	"io/fs"
)

//go:embed js/*.tmpl
var templatesFS embed.FS

// ChunkTemplate is the name of the chunk wrapper template in TemplatesFS.
const ChunkTemplate = "js/chunk.js.tmpl"

// TemplatesFS exposes the embedded runtime templates.
func TemplatesFS() fs.FS {
	return templatesFS
}
