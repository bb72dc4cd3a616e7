package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/alimgiray/bookshelf/pkg/config"
	"github.com/alimgiray/bookshelf/pkg/logger"
	"github.com/mattn/go-sqlite3"
)

// DriverName is the sqlite3 driver variant with the catalog's SQL functions registered.
const DriverName = "sqlite3_bookshelf"

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// casefold lowercases with Unicode rules; SQLite's lower() only folds ASCII.
			return conn.RegisterFunc("casefold", strings.ToLower, true)
		},
	})
}

// Open opens the SQLite database at cfg.Path, tunes it and applies the schema scripts.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=%d",
		cfg.Path, cfg.BusyTimeoutMS)

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := optimizeDatabase(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := RunSQLScripts(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logger.WithField("path", cfg.Path).Info("Database connected successfully with WAL mode")
	return db, nil
}

// optimizeDatabase applies connection-independent PRAGMAs
func optimizeDatabase(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA temp_store=MEMORY",
		"PRAGMA cache_size=-16000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// RunSQLScripts executes the embedded schema scripts in lexical order
func RunSQLScripts(ctx context.Context, db *sql.DB) error {
	files, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return err
	}

	for _, file := range files {
		if filepath.Ext(file.Name()) != ".sql" {
			continue
		}

		sqlContent, err := migrations.ReadFile(path.Join("migrations", file.Name()))
		if err != nil {
			return err
		}

		if _, err := db.ExecContext(ctx, string(sqlContent)); err != nil {
			return fmt.Errorf("failed to execute %s: %w", file.Name(), err)
		}

		logger.Debugf("Executed SQL script: %s", file.Name())
	}

	return nil
}
