// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/taibuivan/tablefinder/internal/platform/dberr"
)

// SQLiteUserRepository implements the UserRepository interface over database/sql.
//
// Timestamps are stored as UTC unix milliseconds.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLite implementation of the UserRepository.
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Create inserts a user row; the UNIQUE columns reject duplicates.
func (repository *SQLiteUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`

	result, err := repository.db.ExecContext(context, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return dberr.Wrap(err, "sqlite_user_repo_create_failed")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return dberr.Wrap(err, "sqlite_user_repo_last_insert_id_failed")
	}

	user.ID = id
	return nil
}

// FindByEmail retrieves a user record by email.
func (repository *SQLiteUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE email = ?`

	var createdAt int64
	user := &User{}
	err := repository.db.QueryRowContext(context, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&createdAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_user_repo_find_by_email_failed")
	}

	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	return user, nil
}
