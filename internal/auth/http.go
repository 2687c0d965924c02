// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tablefinder/internal/platform/middleware"
	requestutil "github.com/taibuivan/tablefinder/internal/platform/request"
	"github.com/taibuivan/tablefinder/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register : Creates a new account.
//   - POST /login    : Authenticates and returns a JWT.
//   - POST /logout   : Revokes the caller's session (bearer token required).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

// RegisterRoutes attaches the authentication routes to an existing router, so they
// can share the root with other feature handlers.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(handler.authService))
		r.Post("/logout", handler.logout)
	})
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// # Response Payloads

type registerResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type loginResponse struct {
	Message           string `json:"message"`
	AccessToken       string `json:"access_token"`
	SessionExpiration string `json:"session_expiration"`
}

type messageResponse struct {
	Message string `json:"message"`
}

/*
Register handles the creation of a new user account.

POST /register

Request:
  - Body: registerRequest (Username, Email, Password)

Response:
  - 201: registerResponse
  - 400: Missing fields, bad email, or user already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, registerResponse{
		Message: MsgRegistered,
		UserID:  userID,
	})
}

/*
Login authenticates a user and establishes the single session.

POST /login

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: loginResponse (session_expiration in RFC 3339, UTC)
  - 400: Missing fields
  - 401: Invalid credentials
  - 403: A session is already active
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, loginResponse{
		Message:           MsgLoggedIn,
		AccessToken:       session.AccessToken,
		SessionExpiration: session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

/*
Logout terminates the current user session.

POST /logout

Description: The session guard has already authenticated the token; the
user ID is taken from the request context.

Response:
  - 200: messageResponse
  - 401: Missing, invalid, expired or revoked token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.authService.Revoke(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: MsgLoggedOut})
}
