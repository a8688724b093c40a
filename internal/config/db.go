package config

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedMigrations embed.FS

// Storage drivers selectable through the connection string
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DBConfig holds database connection parameters.
// DATABASE_URL wins; otherwise a Postgres DSN is built from the DB_* variables.
type DBConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	MaxRetries    int           `env:"DB_CONNECT_RETRIES" envDefault:"5"`
	RetryInterval time.Duration `env:"DB_CONNECT_RETRY_INTERVAL" envDefault:"5s"`
}

// DSN returns the connection string
func (c DBConfig) DSN() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	if c.Host == "" || c.Port == "" || c.User == "" || c.Name == "" {
		return "", fmt.Errorf("database environment variables not set (DATABASE_URL or DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode), nil
}

// Driver picks the storage driver from the connection string
func (c DBConfig) Driver() string {
	dsn, _ := c.DSN()
	if strings.HasPrefix(dsn, "sqlite://") || strings.HasPrefix(dsn, "file:") || dsn == ":memory:" {
		return DriverSQLite
	}
	return DriverPostgres
}

// SQLitePath strips the sqlite:// scheme so the rest can be handed to the driver
func (c DBConfig) SQLitePath() string {
	dsn, _ := c.DSN()
	return strings.TrimPrefix(dsn, "sqlite://")
}

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, cfg DBConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var pool *pgxpool.Pool
	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(ctx, dsn)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				logger.Info("connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn("failed to connect to database",
			"attempt", i+1, "max_attempts", maxRetries, "retry_in", cfg.RetryInterval, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// OpenSQLite opens an SQLite database with a single writer connection
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection serializes writers; concurrent signups queue instead of failing with SQLITE_BUSY
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	return db, nil
}

// AutoMigrate applies the embedded migrations for the given driver
func AutoMigrate(ctx context.Context, db *sql.DB, driver string) error {
	dialect, dir := goose.DialectPostgres, "migrations/postgres"
	if driver == DriverSQLite {
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	}

	migrations, err := fs.Sub(embedMigrations, dir)
	if err != nil {
		return fmt.Errorf("unable to load migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect, db, migrations)
	if err != nil {
		return fmt.Errorf("unable to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	return nil
}

// AutoMigratePool runs AutoMigrate over a pgx pool through the database/sql bridge
func AutoMigratePool(ctx context.Context, pool *pgxpool.Pool) error {
	return AutoMigrate(ctx, stdlib.OpenDBFromPool(pool), DriverPostgres)
}

// OpenMigratedSQLite opens the SQLite database at path and brings its schema up to date
func OpenMigratedSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(ctx, db, DriverSQLite); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
