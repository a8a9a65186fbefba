// Package appfs embeds static assets shipped with the binaries:
// database migrations and mail templates.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS

//go:embed templates
var Templates embed.FS
