package appfs

import "embed"

// FS embeds the database migrations so the binaries stay self-contained.
//go:embed migrations
var FS embed.FS
