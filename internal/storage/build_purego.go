//go:build purego || !cgosqlite

package storage

import (
	// Pure-Go SQLite driver (no CGO required)
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQL driver to use
	DriverName = "sqlite"

	// BuildMode identifies which SQLite driver the binary was built with
	BuildMode = "purego"
)
