package main

import (
	"os"
	"path/filepath"

	"bookcatalog/internal/migrations"
)

// migrationsDir is where "create" writes new files. The embedded copies are what
// up/down/status run, so the default points at the package that embeds them.
func migrationsDir(dialect string) (string, error) {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v, nil
	}
	sub, err := migrations.Dir(dialect)
	if err != nil {
		return "", err
	}
	return filepath.Join("internal", "migrations", sub), nil
}
