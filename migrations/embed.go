package migrations

import "embed"

// FS holds the SQL migrations for every supported dialect, one
// subdirectory per dialect.
//
//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
