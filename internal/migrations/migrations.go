// Package migrations embeds the goose migrations for every supported database.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// Dir returns the embedded directory holding the migrations for dialect.
func Dir(dialect string) (string, error) {
	switch dialect {
	case DialectPostgres:
		return "postgres", nil
	case DialectSQLite, "sqlite":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// Run executes a goose command (up, down, status, version, redo, reset) against db.
func Run(db *sql.DB, dialect, command string, args ...string) error {
	dir, err := Dir(dialect)
	if err != nil {
		return err
	}
	if dialect == "sqlite" {
		dialect = DialectSQLite
	}

	goose.SetBaseFS(FS)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Run(command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// Up applies every pending migration.
func Up(db *sql.DB, dialect string) error {
	return Run(db, dialect, "up")
}
