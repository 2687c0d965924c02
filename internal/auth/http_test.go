// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tablefinder/internal/auth"
	"github.com/taibuivan/tablefinder/internal/platform/middleware"
)

func newTestRouter(env *testEnv) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(discardLogger()))
	router.Mount("/", auth.NewHandler(env.service).Routes())
	return router
}

// call performs a request and decodes the JSON body into a map.
func call(t *testing.T, handler http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	payload := map[string]any{}
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	}
	return recorder.Code, payload
}

/*
TestHTTP_AliceScenario walks the full register, login, conflict, logout, login cycle.
*/
func TestHTTP_AliceScenario(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(env)
	credentials := map[string]string{"email": "alice@x.com", "password": "pw1"}

	// 1. Register
	status, body := call(t, router, http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "pw1",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, auth.MsgRegistered, body["message"])
	assert.EqualValues(t, 1, body["user_id"])

	// 2. Login issues T1 with an RFC 3339 UTC expiry
	status, body = call(t, router, http.MethodPost, "/login", "", credentials)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, auth.MsgLoggedIn, body["message"])
	first, _ := body["access_token"].(string)
	require.NotEmpty(t, first)

	expiration, err := time.Parse(time.RFC3339, body["session_expiration"].(string))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(body["session_expiration"].(string), "Z"))
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiration, 5*time.Second)

	// 3. Second login while T1 is live
	status, body = call(t, router, http.MethodPost, "/login", "", credentials)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "SESSION_CONFLICT", body["code"])
	assert.EqualValues(t, http.StatusForbidden, body["status_code"])

	// 4. Logout with T1
	status, body = call(t, router, http.MethodPost, "/logout", first, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, auth.MsgLoggedOut, body["message"])

	// 5. T1 is now revoked
	status, body = call(t, router, http.MethodPost, "/logout", first, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, auth.MsgSessionNotActive, body["error"])

	// 6. Login again issues a different token
	status, body = call(t, router, http.MethodPost, "/login", "", credentials)
	require.Equal(t, http.StatusOK, status)
	second, _ := body["access_token"].(string)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}

/*
TestHTTP_RegisterMalformedEmail verifies a 400 with no store write.
*/
func TestHTTP_RegisterMalformedEmail(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(env)

	status, body := call(t, router, http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "email": "not-an-email", "password": "pw1",
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, auth.MsgInvalidEmail, body["error"])
	assert.Zero(t, env.countUsers(t))
}

/*
TestHTTP_RegisterErrors verifies the remaining 400 cases.
*/
func TestHTTP_RegisterErrors(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(env)
	env.register(t, "alice", "alice@x.com", "pw1")

	status, body := call(t, router, http.MethodPost, "/register", "", map[string]string{
		"username": "alice2", "email": "alice@x.com", "password": "pw2",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User already exists", body["error"])

	status, body = call(t, router, http.MethodPost, "/register", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, auth.MsgMissingFields, body["error"])

	request := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("{not json"))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

/*
TestHTTP_LoginInvalidCredentials verifies the 401 on a wrong password.
*/
func TestHTTP_LoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(env)
	env.register(t, "alice", "alice@x.com", "pw1")

	status, body := call(t, router, http.MethodPost, "/login", "", map[string]string{
		"email": "alice@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["error"])
}

/*
TestHTTP_GuardStates verifies each guard outcome on the protected route.
*/
func TestHTTP_GuardStates(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(env)
	userID := env.register(t, "alice", "alice@x.com", "pw1")

	expired, _, err := env.tokens.GenerateAccessToken(userID, -time.Minute)
	require.NoError(t, err)
	_, err = env.cache.Create(t.Context(), userID, expired, time.Hour)
	require.NoError(t, err)

	uncached, _, err := env.tokens.GenerateAccessToken(userID+100, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"no_header", "", "Authorization header missing"},
		{"wrong_scheme", "Basic abc", "Invalid token"},
		{"empty_bearer", "Bearer ", "Invalid token"},
		{"garbage_token", "Bearer garbage", "Invalid token"},
		{"expired_but_cached", "Bearer " + expired, "Token expired"},
		{"valid_not_cached", "Bearer " + uncached, "Token invalid or expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/logout", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body["error"])
			assert.Equal(t, "UNAUTHORIZED", body["code"])
		})
	}
}
