//go:build cgosqlite

package storage

import (
	// CGO-based SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQL driver to use
	DriverName = "sqlite3"

	// BuildMode identifies which SQLite driver the binary was built with
	BuildMode = "cgo"
)
