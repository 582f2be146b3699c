// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

// Package database provides the DuckDB-backed store for the
// recommendation service: community schema, candidate pool loaders,
// batched factor-context queries, enrichment reads, and account
// lookups for login.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/stepsocial/stepsocial/internal/config"
	"github.com/stepsocial/stepsocial/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn           *sql.DB
	cfg            *config.DatabaseConfig
	startupTimeout time.Duration
}

// New opens (or creates) the database and initializes the schema.
// An empty cfg.Path opens an in-memory database.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	} else {
		// Ensure the parent directory exists so DuckDB can create the
		// file. 0750 per gosec G301.
		if dbDir := filepath.Dir(path); dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	// Disable auto-install/auto-load to prevent hangs in restricted
	// network environments.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	startupTimeout := cfg.StartupTimeout
	if startupTimeout <= 0 {
		startupTimeout = 30 * time.Second
	}

	db := &DB{
		conn:           conn,
		cfg:            cfg,
		startupTimeout: startupTimeout,
	}

	if err := db.configureConnectionPool(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	if err := db.createTables(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if cfg.SeedDemoData {
		if err := db.seedDemoData(); err != nil {
			logging.Warn().Err(err).Msg("Demo data seeding failed")
		}
	}

	return db, nil
}

// configureConnectionPool tunes the database/sql pool. DuckDB is an
// in-process engine, so a small pool is enough.
func (db *DB) configureConnectionPool() error {
	db.conn.SetMaxOpenConns(4)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Conn returns the underlying SQL connection for packages that need
// direct access.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping checks if the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Close flushes the WAL with a checkpoint and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}

	return db.conn.Close()
}

// startupContext bounds schema and seed statements that run at
// startup, outside any request. Request-path reads carry the caller's
// context unchanged so the request deadline is the only deadline.
func (db *DB) startupContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), db.startupTimeout)
}

// closeQuietly closes a connection ignoring errors, for cleanup paths
// that already carry an error.
func closeQuietly(conn *sql.DB) {
	if conn != nil {
		_ = conn.Close()
	}
}
