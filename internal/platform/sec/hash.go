// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when no account matches, so an unknown email
// costs the same bcrypt work as a wrong password.
var dummyHash []byte

func init() {
	hash, err := bcrypt.GenerateFromPassword([]byte("tablefinder-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("sec: cannot build dummy password hash: %v", err))
	}
	dummyHash = hash
}

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// bcrypt embeds a random per-hash salt, so equal passwords never share a hash.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// BurnPasswordCheck performs a comparison that always fails.
func BurnPasswordCheck(plainTextPassword string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plainTextPassword))
}
