//go:build purego || !sqlite_cgo
// +build purego !sqlite_cgo

package storage

// This file is compiled when building without CGO or with the purego tag.
// It uses the pure Go SQLite translation, which ships FTS5 and JSON1.
//
// Build command:
//   CGO_ENABLED=0 go build -tags "purego" ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// NativeSQLite indicates the C SQLite library is linked
	NativeSQLite = false

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
