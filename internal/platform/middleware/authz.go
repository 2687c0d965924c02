// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/taibuivan/tablefinder/internal/platform/apperr"
	"github.com/taibuivan/tablefinder/internal/platform/constants"
	"github.com/taibuivan/tablefinder/internal/platform/ctxkey"
	"github.com/taibuivan/tablefinder/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/tablefinder/internal/platform/request"
	"github.com/taibuivan/tablefinder/internal/platform/respond"
	"github.com/taibuivan/tablefinder/internal/platform/sec"
)

// SessionAuthenticator verifies a bearer token against its signature, its
// expiry and the live session cache in one call.
//
// Defining it here keeps the middleware independent of the auth package.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*sec.SessionClaims, error)
}

/*
RequireSession guards a route group behind a live session.

# Flow
 1. No Authorization header: 401 "Authorization header missing".
 2. Header present but not 'Bearer <token>': 401 "Invalid token".
 3. Token delegated to the [SessionAuthenticator]; its error is rendered as-is.
 4. On success the [*sec.SessionClaims] are attached to the request context,
    so handlers never decode the token a second time.
*/
func RequireSession(authenticator SessionAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token, present, wellFormed := requestutil.BearerToken(request)

			// 1. Header checks happen before any cryptography
			if !present {
				deny(writer, request, apperr.Unauthorized("Authorization header missing").WithReason(constants.ReasonMissingHeader, nil))
				return
			}
			if !wellFormed {
				deny(writer, request, apperr.Unauthorized("Invalid token").WithReason(constants.ReasonMalformedHeader, nil))
				return
			}

			// 2. Signature, expiry and session cache, in that order
			claims, err := authenticator.Authenticate(request.Context(), token)
			if err != nil {
				deny(writer, request, err)
				return
			}

			// 3. Publish the identity to handlers and to the access log
			if identity := identityFrom(request.Context()); identity != nil {
				identity.userID.Store(claims.UserID)
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// deny logs the rejection reason and renders the error.
func deny(writer http.ResponseWriter, request *http.Request, err error) {
	if appError := apperr.As(err); appError != nil && appError.HTTPStatus < http.StatusInternalServerError {
		ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "access_denied",
			slog.String("reason", appError.Reason),
			slog.String("code", appError.Code),
		)
	}
	respond.Error(writer, request, err)
}

// # Request Identity

// requestIdentity is a per-request slot the guard fills so the outer access
// logger can report which user the request belonged to.
type requestIdentity struct {
	userID atomic.Int64
}

// UserID returns the authenticated user, or 0 when the guard never ran.
func (identity *requestIdentity) UserID() int64 {
	return identity.userID.Load()
}

func withIdentity(ctx context.Context, identity *requestIdentity) context.Context {
	return context.WithValue(ctx, ctxkey.KeyIdentity, identity)
}

func identityFrom(ctx context.Context) *requestIdentity {
	identity, _ := ctx.Value(ctxkey.KeyIdentity).(*requestIdentity)
	return identity
}
