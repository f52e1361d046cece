// Package maintdesk provides embedded web assets for production builds.
package maintdesk

import "embed"

// In dev mode (DEV=true) templates and static files are read from disk for
// hot reloading; otherwise these embedded copies are served.

//go:embed web/templates
var TemplateFS embed.FS

//go:embed web/static
var StaticFS embed.FS
