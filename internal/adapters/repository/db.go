package repository

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

//go:embed migrations/*.sql
var migrations embed.FS

type DBConfig struct {
	Driver string

	// PostgresDriver picks the database/sql driver for Postgres: "pgx"
	// (default) or "pq".
	PostgresDriver string
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string

	SQLitePath string
}

func (c DBConfig) PostgresDSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, sslMode)
}

// Open connects to the configured SQL database. The memory driver has no
// database and is rejected here.
func Open(ctx context.Context, cfg DBConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverPostgres:
		driver := "pgx"
		if cfg.PostgresDriver == "pq" {
			driver = "postgres"
		}
		db, err := sqlx.ConnectContext(ctx, driver, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("repository: connect postgres: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		return db, nil

	case DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	}
	return nil, fmt.Errorf("repository: unsupported sql driver %q", cfg.Driver)
}

// OpenSQLite opens path (":memory:" works) on a single connection with
// foreign keys enforced.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

// Migrate applies the schema for db's driver. Every statement is
// idempotent, so it is safe to run on each start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	file := "migrations/postgres.sql"
	if db.DriverName() == "sqlite" {
		file = "migrations/sqlite.sql"
	}

	schema, err := migrations.ReadFile(file)
	if err != nil {
		return fmt.Errorf("repository: read %s: %w", file, err)
	}

	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("repository: migrate: %w", err)
		}
	}
	return nil
}
