// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away common body decoding and credential extraction patterns,
ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taibuivan/tablefinder/internal/platform/apperr"
	"github.com/taibuivan/tablefinder/internal/platform/constants"
	"github.com/taibuivan/tablefinder/internal/platform/ctxutil"
	"github.com/taibuivan/tablefinder/internal/platform/validate"
)

// maxBodyBytes caps JSON request bodies; credentials never need more.
const maxBodyBytes = 1 << 16

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if request.Body == nil {
		return validate.ErrInvalidJSON
	}
	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
BearerToken extracts the token from an 'Authorization: Bearer <token>' header.

Returns:
  - string: The raw token
  - bool: false if the header is absent
  - bool: false if the header is present but not a well-formed bearer credential
*/
func BearerToken(request *http.Request) (token string, present bool, wellFormed bool) {
	header := strings.TrimSpace(request.Header.Get(constants.HeaderAuthorization))
	if header == "" {
		return "", false, false
	}

	scheme, value, found := strings.Cut(header, " ")
	value = strings.TrimSpace(value)
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) || value == "" || strings.Contains(value, " ") {
		return "", true, false
	}

	return value, true, true
}

/*
RequiredUserID returns the User ID of the currently logged-in user.

Returns:
  - int64: User ID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (int64, error) {

	// Get session claims placed by the access guard
	claims := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if claims == nil {
		return 0, apperr.Unauthorized("Authentication required")
	}

	return claims.UserID, nil
}
