package appfs

import "embed"

// FS holds embedded assets shipped with the binaries (DB migrations).
//go:embed migrations
var FS embed.FS
