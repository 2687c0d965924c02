// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/taibuivan/tablefinder/internal/platform/apperr"
	"github.com/taibuivan/tablefinder/internal/platform/constants"
	"github.com/taibuivan/tablefinder/internal/platform/ctxutil"
	"github.com/taibuivan/tablefinder/internal/platform/dberr"
	"github.com/taibuivan/tablefinder/internal/platform/sec"
	"github.com/taibuivan/tablefinder/internal/platform/telemetry"
	"github.com/taibuivan/tablefinder/internal/platform/validate"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and checking access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT for userID and reports its expiry.
	GenerateAccessToken(userID int64, timeToLive time.Duration) (string, time.Time, error)

	// VerifyToken checks signature and expiry, classifying failures with the sec sentinels.
	VerifyToken(token string) (*sec.SessionClaims, error)
}

// Service implements user authentication use cases.
//
// It is the only writer of both the Credential Store and the Session Cache.
type Service struct {
	userRepository UserRepository
	sessionCache   SessionCache
	tokenProvider  TokenProvider
	storeTimeout   time.Duration
	sessionTTL     time.Duration
	tracer         trace.Tracer
}

// NewService constructs a new [Service] with necessary dependencies.
//
// storeTimeout bounds every individual store call.
func NewService(userRepo UserRepository, sessionCache SessionCache, tokenProv TokenProvider, storeTimeout time.Duration) *Service {
	return &Service{
		userRepository: userRepo,
		sessionCache:   sessionCache,
		tokenProvider:  tokenProv,
		storeTimeout:   storeTimeout,
		sessionTTL:     constants.SessionTTL,
		tracer:         telemetry.Tracer("tablefinder/auth"),
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Validation happens before any write. Uniqueness is left to the
store's constraints, so two concurrent registrations for the same email yield
exactly one success.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - int64: ID of the created user
  - err: ValidationError, DuplicateCredential or Internal
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (int64, error) {
	ctx, span := service.tracer.Start(ctx, "auth.Register")
	defer span.End()

	username := strings.TrimSpace(input.Username)

	// Missing fields are reported together, before the email shape check.
	// Passwords are taken verbatim, so whitespace is a legal password.
	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).
		Required(FieldEmail, input.Email).
		Custom(FieldPassword, input.Password == "", "This field is required")

	if err := validator.ErrWith(MsgMissingFields); err != nil {
		return 0, err
	}

	if err := (&validate.Validator{}).Email(FieldEmail, input.Email).ErrWith(MsgInvalidEmail); err != nil {
		return 0, err
	}

	lengths := &validate.Validator{}
	lengths.MaxLen(FieldUsername, username, MaxUsernameLength).
		MaxLen(FieldEmail, input.Email, MaxEmailLength)
	if err := lengths.ErrWith(MsgFieldTooLong); err != nil {
		return 0, err
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	user := &User{
		Username:     username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	if err := service.userRepository.Create(storeCtx, user); err != nil {
		if errors.Is(err, dberr.ErrUniqueViolation) {
			return 0, apperr.DuplicateCredential()
		}
		return 0, fail(span, fmt.Errorf("auth_service_register_failed: %w", err))
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_registered", slog.Int64("user_id", user.ID))

	return user.ID, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	UserID      int64
	AccessToken string
	ExpiresAt   time.Time
}

/*
Login validates user credentials and opens the user's single session.

Description: An unknown email and a wrong password are indistinguishable to
the caller, in message and in bcrypt cost. A live session makes the attempt
fail with SessionConflict; the existing session is left untouched.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Token and its expiry
  - err: ValidationError, InvalidCredentials, SessionConflict or Internal
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	ctx, span := service.tracer.Start(ctx, "auth.Login")
	defer span.End()

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Custom(FieldPassword, input.Password == "", "This field is required")

	if err := validator.ErrWith(MsgMissingFields); err != nil {
		return nil, err
	}

	user, err := service.findByEmail(ctx, input.Email)
	if errors.Is(err, dberr.ErrNotFound) {
		sec.BurnPasswordCheck(input.Password)
		return nil, apperr.InvalidCredentials()
	}
	if err != nil {
		return nil, fail(span, fmt.Errorf("auth_service_login_lookup_failed: %w", err))
	}

	// Constant-time comparison happens inside bcrypt
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	accessToken, expiresAt, err := service.tokenProvider.GenerateAccessToken(user.ID, service.sessionTTL)
	if err != nil {
		return nil, fail(span, fmt.Errorf("auth_service_token_generation_failed: %w", err))
	}

	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	created, err := service.sessionCache.Create(storeCtx, user.ID, accessToken, service.sessionTTL)
	if err != nil {
		return nil, fail(span, fmt.Errorf("auth_service_session_creation_failed: %w", err))
	}

	logger := ctxutil.GetLogger(ctx)
	if !created {
		logger.WarnContext(ctx, "session_conflict", slog.Int64("user_id", user.ID))
		return nil, apperr.SessionConflict()
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	logger.InfoContext(ctx, "user_logged_in", slog.Int64("user_id", user.ID))

	return &LoginSession{
		UserID:      user.ID,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

// LogoutResult reports what a logout actually changed.
type LogoutResult struct {
	// Revoked is false when no session existed (already expired or revoked).
	Revoked bool
}

/*
Logout decodes token and revokes its owner's session.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - LogoutResult: Whether a session was removed
  - err: Unauthorized for a bad or expired token, Internal for store failures
*/
func (service *Service) Logout(ctx context.Context, token string) (LogoutResult, error) {
	claims, err := service.Verify(ctx, token)
	if err != nil {
		return LogoutResult{}, err
	}
	return service.Revoke(ctx, claims.UserID)
}

/*
Revoke deletes the session of userID.

Description: A missing key is not an error. It is logged as a warning so an
expired or double logout stays visible while the call still succeeds.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - LogoutResult: Whether a session was removed
  - err: Internal for store failures
*/
func (service *Service) Revoke(ctx context.Context, userID int64) (LogoutResult, error) {
	ctx, span := service.tracer.Start(ctx, "auth.Revoke", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	removed, err := service.sessionCache.Delete(storeCtx, userID)
	if err != nil {
		return LogoutResult{}, fail(span, fmt.Errorf("auth_service_logout_failed: %w", err))
	}

	logger := ctxutil.GetLogger(ctx)
	if !removed {
		logger.WarnContext(ctx, "session_revoke_missed", slog.Int64("user_id", userID))
	} else {
		logger.InfoContext(ctx, "session_revoked", slog.Int64("user_id", userID))
	}

	return LogoutResult{Revoked: removed}, nil
}

// # Token Checks

/*
Verify checks a token's signature and expiry only.

Returns:
  - *sec.SessionClaims: Decoded claims
  - err: Unauthorized carrying the rejection reason
*/
func (service *Service) Verify(ctx context.Context, token string) (*sec.SessionClaims, error) {
	claims, err := service.tokenProvider.VerifyToken(token)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, sec.ErrTokenExpired):
		return nil, apperr.Unauthorized(MsgTokenExpired).WithReason(constants.ReasonExpired, err)
	case errors.Is(err, sec.ErrTokenSignature):
		return nil, apperr.Unauthorized(MsgTokenInvalid).WithReason(constants.ReasonBadSignature, err)
	default:
		return nil, apperr.Unauthorized(MsgTokenInvalid).WithReason(constants.ReasonMalformed, err)
	}
}

/*
Authenticate is the single verification path for protected requests.

Description: Signature and expiry are checked first, so an expired token is
rejected even while its cache entry is still alive. The cached token must then
equal the presented one; a token from an earlier session of the same user is
treated as revoked.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *sec.SessionClaims: Claims of the live session
  - err: Unauthorized carrying the rejection reason, or Internal
*/
func (service *Service) Authenticate(ctx context.Context, token string) (*sec.SessionClaims, error) {
	ctx, span := service.tracer.Start(ctx, "auth.Authenticate")
	defer span.End()

	claims, err := service.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	stored, err := service.sessionCache.Get(storeCtx, claims.UserID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, apperr.Unauthorized(MsgSessionNotActive).WithReason(constants.ReasonRevoked, err)
	}
	if err != nil {
		return nil, fail(span, fmt.Errorf("auth_service_session_lookup_failed: %w", err))
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(token)) != 1 {
		return nil, apperr.Unauthorized(MsgSessionNotActive).WithReason(constants.ReasonRevoked, nil)
	}

	span.SetAttributes(attribute.Int64("user.id", claims.UserID))
	return claims, nil
}

// # Helpers

// findByEmail looks a user up under the store deadline.
func (service *Service) findByEmail(ctx context.Context, email string) (*User, error) {
	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()
	return service.userRepository.FindByEmail(storeCtx, strings.TrimSpace(email))
}

// storeContext derives the per-call deadline for a single store operation.
func (service *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, service.storeTimeout)
}

// fail records err on the span and wraps it as a 500.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "internal")
	return apperr.Internal(err)
}
