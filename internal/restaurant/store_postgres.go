// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package restaurant

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/tablefinder/internal/platform/dberr"
	"github.com/taibuivan/tablefinder/internal/platform/postgres"
)

// PostgresTransactionRepository implements TransactionRepository using pgx.
//
// Restaurant names are stored in a native TEXT[] column.
type PostgresTransactionRepository struct {
	db postgres.Querier
}

// NewPostgresTransactionRepository creates a new PostgreSQL TransactionRepository.
func NewPostgresTransactionRepository(db postgres.Querier) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

// Create inserts a transaction row and reads back its ID.
func (repository *PostgresTransactionRepository) Create(context context.Context, transaction *Transaction) error {
	const query = `
		INSERT INTO transactions (user_id, date, restaurants)
		VALUES ($1, $2, $3)
		RETURNING id`

	restaurants := transaction.Restaurants
	if restaurants == nil {
		restaurants = []string{}
	}

	err := repository.db.QueryRow(context, query,
		transaction.UserID,
		transaction.Date,
		restaurants,
	).Scan(&transaction.ID)

	return dberr.Wrap(err, "postgres_transaction_repo_create_failed")
}

// ListByUser returns the user's transactions ordered by ID.
func (repository *PostgresTransactionRepository) ListByUser(context context.Context, userID int64) ([]Transaction, error) {
	const query = `
		SELECT id, user_id, date, restaurants
		FROM transactions
		WHERE user_id = $1
		ORDER BY id`

	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_transaction_repo_list_failed")
	}

	transactions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Transaction, error) {
		var transaction Transaction
		err := row.Scan(&transaction.ID, &transaction.UserID, &transaction.Date, &transaction.Restaurants)
		transaction.Date = transaction.Date.UTC()
		return transaction, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_transaction_repo_scan_failed")
	}

	if transactions == nil {
		transactions = []Transaction{}
	}
	return transactions, nil
}
