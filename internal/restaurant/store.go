// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package restaurant

import "context"

// TransactionRepository defines the data access contract for search history.
type TransactionRepository interface {

	/*
		Create persists a transaction and fills in its ID.

		Parameters:
		  - context: context.Context
		  - transaction: *Transaction

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, transaction *Transaction) error

	/*
		ListByUser returns every transaction of userID, oldest first.

		Parameters:
		  - context: context.Context
		  - userID: int64

		Returns:
		  - []Transaction: Possibly empty, never nil
		  - error: Retrieval failures
	*/
	ListByUser(context context.Context, userID int64) ([]Transaction, error)
}
