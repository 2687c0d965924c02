// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package restaurant

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/taibuivan/tablefinder/internal/platform/dberr"
)

// SQLiteTransactionRepository implements TransactionRepository over database/sql.
//
// Restaurant names are stored as a JSON array; dates as UTC unix milliseconds.
type SQLiteTransactionRepository struct {
	db *sql.DB
}

// NewSQLiteTransactionRepository creates a new SQLite TransactionRepository.
func NewSQLiteTransactionRepository(db *sql.DB) *SQLiteTransactionRepository {
	return &SQLiteTransactionRepository{db: db}
}

// Create inserts a transaction row.
func (repository *SQLiteTransactionRepository) Create(context context.Context, transaction *Transaction) error {
	const query = `
		INSERT INTO transactions (user_id, date, restaurants)
		VALUES (?, ?, ?)`

	restaurants := transaction.Restaurants
	if restaurants == nil {
		restaurants = []string{}
	}

	encoded, err := json.Marshal(restaurants)
	if err != nil {
		return fmt.Errorf("sqlite_transaction_repo_encode_failed: %w", err)
	}

	result, err := repository.db.ExecContext(context, query,
		transaction.UserID,
		transaction.Date.UTC().UnixMilli(),
		string(encoded),
	)
	if err != nil {
		return dberr.Wrap(err, "sqlite_transaction_repo_create_failed")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return dberr.Wrap(err, "sqlite_transaction_repo_last_insert_id_failed")
	}

	transaction.ID = id
	return nil
}

// ListByUser returns the user's transactions ordered by ID.
func (repository *SQLiteTransactionRepository) ListByUser(context context.Context, userID int64) ([]Transaction, error) {
	const query = `
		SELECT id, user_id, date, restaurants
		FROM transactions
		WHERE user_id = ?
		ORDER BY id`

	rows, err := repository.db.QueryContext(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_transaction_repo_list_failed")
	}
	defer rows.Close()

	transactions := []Transaction{}
	for rows.Next() {
		var (
			transaction Transaction
			dateMillis  int64
			encoded     string
		)
		if err := rows.Scan(&transaction.ID, &transaction.UserID, &dateMillis, &encoded); err != nil {
			return nil, dberr.Wrap(err, "sqlite_transaction_repo_scan_failed")
		}
		if err := json.Unmarshal([]byte(encoded), &transaction.Restaurants); err != nil {
			return nil, fmt.Errorf("sqlite_transaction_repo_decode_failed: %w", err)
		}
		transaction.Date = time.UnixMilli(dateMillis).UTC()
		transactions = append(transactions, transaction)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "sqlite_transaction_repo_rows_failed")
	}

	return transactions, nil
}
