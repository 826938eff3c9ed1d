package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// schemaLog forwards migrate's progress lines to slog at debug level.
type schemaLog struct{}

func (schemaLog) Printf(format string, v ...any) {
	slog.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "storage")
}

func (schemaLog) Verbose() bool {
	return slog.Default().Enabled(context.Background(), slog.LevelDebug)
}

// migrateSchema applies pending schema changes to the database file at path
// and returns the version it ends on. migrate closes the handle it is given,
// so the work happens on a connection of its own.
func migrateSchema(path string) (uint, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("open %s for schema changes: %w", path, err)
	}
	defer conn.Close()

	src, err := iofs.New(schemaFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("load schema files: %w", err)
	}
	target, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		src.Close()
		return 0, fmt.Errorf("prepare schema table: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", target)
	if err != nil {
		src.Close()
		return 0, fmt.Errorf("prepare schema changes: %w", err)
	}
	defer m.Close()
	m.Log = schemaLog{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply schema changes: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d was left dirty by an interrupted change", version)
	}
	return version, nil
}
