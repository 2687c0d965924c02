// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Client Messages

const (
	MsgRegistered       = "User registered successfully"
	MsgLoggedIn         = "Login successful"
	MsgLoggedOut        = "Logout successful"
	MsgMissingFields    = "Missing required fields"
	MsgInvalidEmail     = "Invalid email format"
	MsgFieldTooLong     = "Field exceeds maximum length"
	MsgTokenExpired     = "Token expired"
	MsgTokenInvalid     = "Invalid token"
	MsgSessionNotActive = "Token invalid or expired"
)
