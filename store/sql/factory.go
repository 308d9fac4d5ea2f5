package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// OpenDB opens a bun database for the sqlite3 or postgres driver.
func OpenDB(driver string, dsn string) (*bun.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	var dialect schema.Dialect
	switch driver {
	case DriverSQLite, "sqlite":
		driver = DriverSQLite
		dialect = sqlitedialect.New()
	case DriverPostgres, "pg", "postgresql":
		driver = DriverPostgres
		dialect = pgdialect.New()
	default:
		return nil, storeError(ErrorUnsupportedDriver, "sqlstore: unsupported driver "+driver, nil, map[string]any{"driver": driver})
	}
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, storeError(ErrorStoreNotConfigured, "sqlstore: open database", err, map[string]any{"driver": driver})
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	return bun.NewDB(sqlDB, dialect), nil
}

func NewSessionStoreFromPersistence(client *persistence.Client, opts ...Option) (*SessionStore, error) {
	if client == nil {
		return nil, storeError(ErrorStoreNotConfigured, "sqlstore: persistence client is required", nil, nil)
	}
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return NewSessionStore(db, opts...)
}

// EnsureSchema creates the session table when migrations are not in use.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return storeError(ErrorStoreNotConfigured, "sqlstore: bun db is required", nil, nil)
	}
	if _, err := db.NewCreateTable().
		Model((*sessionRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return storeError(ErrorStoreQueryFailed, "sqlstore: create session table", err, nil)
	}
	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, storeError(ErrorStoreNotConfigured, "sqlstore: persistence client is required", nil, nil)
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, storeError(ErrorStoreNotConfigured, "sqlstore: persistence client returned nil bun db", nil, nil)
		}
		return db, nil
	default:
		return nil, storeError(ErrorStoreNotConfigured, "sqlstore: unsupported persistence client type", nil, nil)
	}
}
