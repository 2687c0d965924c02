// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sqlite opens the embedded, cgo-free SQLite credential store.
//
// It is the single-file alternative to the PostgreSQL pool, used for local
// runs and for tests that need real constraint enforcement.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// pingTimeout is the maximum duration for a health check ping.
const pingTimeout = 2 * time.Second

// pragmas applied to every connection. busy_timeout lets concurrent writers
// queue instead of failing with SQLITE_BUSY.
const pragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// DSN builds the modernc connection string for the database file at path.
func DSN(path string) string {
	return filepath.Clean(path) + "?" + pragmas
}

// Open opens and pings the SQLite database at path.
//
// A single connection serializes writers so the unique constraints decide
// every race deterministically.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: storage path is required")
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := Ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("sqlite store opened", slog.String("path", filepath.Clean(path)))

	return db, nil
}

// Ping verifies that the SQLite handle is usable.
func Ping(ctx context.Context, db *sql.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}

	return nil
}
