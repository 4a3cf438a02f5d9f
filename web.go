package aithlete

import "embed"

// WebFS holds the page templates and static assets.
//
//go:embed web/templates web/static
var WebFS embed.FS
