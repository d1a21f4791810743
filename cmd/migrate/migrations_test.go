package main

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pressly/goose/v3"
)

func TestCollectMigrations_ParsesMigrationsDir(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file lives in cmd/migrate/, so repo root is ../..
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", ".."))

	for _, dialect := range []string{"postgres", "sqlite"} {
		t.Setenv("MIGRATIONS_DIR", "")
		rel, err := migrationsDir(dialect)
		if err != nil {
			t.Fatalf("migrationsDir(%s): %v", dialect, err)
		}
		if _, err := goose.CollectMigrations(filepath.Join(repoRoot, rel), 0, goose.MaxVersion); err != nil {
			t.Fatalf("expected %s migrations to parse, got error: %v", dialect, err)
		}
	}
}
