package db

import (
	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Tables lists every table in Schema, used by smoke checks.
var Tables = []string{"listings", "evidence", "scan_runs"}
