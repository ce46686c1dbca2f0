// Package db holds the embedded schema applied on startup.
package db

import _ "embed"

//go:embed migrations/001_schema.sql
var Schema string
