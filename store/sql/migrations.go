package sqlstore

import (
	"context"
	"embed"
	"io/fs"
	"path"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun/dialect"
)

// Postgres migrations live at the root, sqlite ones under sqlite/.
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var migrationsFS embed.FS

const (
	migrationsRoot    = "data/sql/migrations"
	sessionsMigration = "00001_auth_sessions.up.sql"
)

// MigrationsFS returns the auth_sessions migrations for a bun dialect.
func MigrationsFS(name dialect.Name) (fs.FS, error) {
	dir := migrationsRoot
	switch name {
	case dialect.PG:
	case dialect.SQLite:
		dir = path.Join(migrationsRoot, "sqlite")
	default:
		return nil, storeError(ErrorUnsupportedDriver, "sqlstore: no session migrations for dialect "+name.String(), nil,
			map[string]any{"dialect": name.String()})
	}
	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return nil, storeError(ErrorStoreNotConfigured, "sqlstore: resolve migrations", err, map[string]any{"path": dir})
	}
	if _, err := fs.Stat(sub, sessionsMigration); err != nil {
		return nil, storeError(ErrorStoreNotConfigured, "sqlstore: session migration missing", err,
			map[string]any{"path": path.Join(dir, sessionsMigration)})
	}
	return sub, nil
}

// Migrate registers the session migrations matching the client's dialect and
// applies them.
func Migrate(ctx context.Context, client *persistence.Client) error {
	if client == nil {
		return storeError(ErrorStoreNotConfigured, "sqlstore: persistence client is required", nil, nil)
	}
	db, err := resolveBunDB(client)
	if err != nil {
		return err
	}
	fsys, err := MigrationsFS(db.Dialect().Name())
	if err != nil {
		return err
	}
	client.RegisterSQLMigrations(fsys)
	if err := client.Migrate(ctx); err != nil {
		return storeError(ErrorStoreQueryFailed, "sqlstore: apply session migrations", err, nil)
	}
	return nil
}
