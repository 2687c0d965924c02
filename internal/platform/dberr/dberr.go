// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// Both supported credential stores (PostgreSQL via pgx, SQLite via modernc)
// report constraint violations differently; this package folds them into the
// same sentinels so repositories stay driver-agnostic towards the services.
package dberr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a queried row doesn't exist.
	ErrNotFound = errors.New("dberr: row not found")

	// ErrUniqueViolation is returned when an insert collides with a unique constraint.
	ErrUniqueViolation = errors.New("dberr: unique constraint violated")
)

// Wrap inspects a database error and classifies it.
//
// The returned error always wraps the original, so the driver detail stays
// available for logs while callers match on the sentinels with [errors.Is].
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w: %w", action, ErrNotFound, err)
	}

	// 2. Unique constraint mapping
	if IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", action, ErrUniqueViolation, err)
	}

	// 3. Everything else stays an opaque storage failure
	return fmt.Errorf("%s: %w", action, err)
}

// IsUniqueViolation reports whether err is a unique/primary-key violation from either driver.
func IsUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return pgError.Code == pgerrcode.UniqueViolation
	}

	var sqliteError *sqlite.Error
	if errors.As(err, &sqliteError) {
		switch sqliteError.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// Primary result code only, when extended codes are switched off.
			return strings.Contains(sqliteError.Error(), "UNIQUE constraint failed")
		}
	}

	return false
}
