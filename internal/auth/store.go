// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by [SessionCache.Get] when no live session exists.
var ErrSessionNotFound = errors.New("auth: session not found")

// # User Data Access

// UserRepository defines the data access contract for the Credential Store.
//
// Implementations must enforce uniqueness of username and email themselves and
// report a collision as [dberr.ErrUniqueViolation].
type UserRepository interface {

	/*
		Create persists a brand-new user and fills in the generated ID.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: dberr.ErrUniqueViolation on a duplicate username or email
	*/
	Create(context context.Context, user *User) error

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)
}

// # Session Data Access

// SessionCache defines the contract for the single active session per user.
type SessionCache interface {

	/*
		Create stores token for userID only if no session exists yet.

		Parameters:
		  - context: context.Context
		  - userID: int64
		  - token: string
		  - ttl: time.Duration

		Returns:
		  - bool: false if a session already existed (nothing was written)
		  - error: Connectivity errors
	*/
	Create(context context.Context, userID int64, token string, ttl time.Duration) (bool, error)

	/*
		Get returns the live token for userID.

		Parameters:
		  - context: context.Context
		  - userID: int64

		Returns:
		  - string: The stored token
		  - error: ErrSessionNotFound or connectivity errors
	*/
	Get(context context.Context, userID int64) (string, error)

	/*
		Delete removes the session for userID.

		Parameters:
		  - context: context.Context
		  - userID: int64

		Returns:
		  - bool: whether a session was actually removed
		  - error: Connectivity errors
	*/
	Delete(context context.Context, userID int64) (bool, error)
}
