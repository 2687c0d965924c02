// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements credential registration and the single-session
authentication lifecycle.

It handles user registration with salted password hashing, login with JWT
issuance, logout by session revocation, and per-request session checks.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Logout, Authenticate).
  - Repository: Abstracted interfaces for the Credential Store (Postgres or SQLite)
    and the Session Cache (Redis).
  - Security: bcrypt password hashes and HS256-signed JWTs via [sec].

A token is only honoured while its session cache entry is alive, so logout is
effective immediately even though the token itself is still signed and unexpired.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered member. Users are never updated nor deleted here.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// Column limits, counted in characters.
const (
	MaxUsernameLength = 80
	MaxEmailLength    = 120
)
