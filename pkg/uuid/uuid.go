// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the platform.

It wraps the standard UUID library to generate Version 7 values, used for
request correlation IDs and token identifiers (jti).

Advantages:

  - Sortable: Naturally ordered by creation time (millisecond precision).
  - Unique: Two tokens minted in the same second never collide.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
//
// If the entropy source fails it falls back to a random v4 value instead of
// panicking inside a request.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
