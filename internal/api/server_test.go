// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tablefinder/internal/api"
	"github.com/taibuivan/tablefinder/internal/auth"
	"github.com/taibuivan/tablefinder/internal/platform/config"
	"github.com/taibuivan/tablefinder/internal/platform/middleware"
	"github.com/taibuivan/tablefinder/internal/platform/migration"
	"github.com/taibuivan/tablefinder/internal/platform/sec"
	"github.com/taibuivan/tablefinder/internal/platform/sqlite"
	"github.com/taibuivan/tablefinder/internal/restaurant"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// staticFinder always returns the same places.
type staticFinder struct{}

func (staticFinder) ByCity(context.Context, string) ([]restaurant.Place, error) {
	return []restaurant.Place{{Name: "Trattoria"}}, nil
}

func (staticFinder) ByCoordinates(context.Context, float64, float64) ([]restaurant.Place, error) {
	return []restaurant.Place{{Name: "Trattoria"}}, nil
}

// newTestServer wires the full router over SQLite and an in-memory Redis.
func newTestServer(t *testing.T, checks []api.HealthCheck) http.Handler {
	t.Helper()

	path := filepath.Join(t.TempDir(), "api.db")
	require.NoError(t, migration.RunSQLite(path, discardLogger()))
	db, err := sqlite.Open(context.Background(), path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := sec.NewTokenService("test-secret", "tablefinder")
	require.NoError(t, err)

	authService := auth.NewService(auth.NewSQLiteUserRepository(db), auth.NewSessionCache(client), tokens, time.Second)
	searchService := restaurant.NewService(staticFinder{}, restaurant.NewSQLiteTransactionRepository(db), time.Second)

	liveness, readiness := api.NewHealthHandlers(checks, discardLogger())
	cfg := &config.Config{ServerPort: "0", Environment: "development"}

	return api.NewServer(cfg, discardLogger(), api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       auth.NewHandler(authService),
		Restaurant: restaurant.NewHandler(searchService, middleware.RequireSession(authService)),
	}).Handler()
}

func send(t *testing.T, handler http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}

	request := httptest.NewRequest(method, path, bytes.NewReader(raw))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	payload := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return recorder.Code, payload
}

/*
TestServer_EndToEnd verifies both feature handlers share the root and the session guard.
*/
func TestServer_EndToEnd(t *testing.T) {
	handler := newTestServer(t, nil)

	status, _ := send(t, handler, http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "pw1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := send(t, handler, http.MethodPost, "/login", "", map[string]string{
		"email": "alice@x.com", "password": "pw1",
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)

	status, body = send(t, handler, http.MethodGet, "/restaurants?city=Rome", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"Trattoria"}, body["restaurants"])

	status, _ = send(t, handler, http.MethodPost, "/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	// The revoked token no longer opens the search routes
	status, _ = send(t, handler, http.MethodGet, "/transactions", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

/*
TestHealth_Readiness verifies readiness reports each dependency and degrades on failure.
*/
func TestHealth_Readiness(t *testing.T) {
	healthy := api.HealthCheck{Name: "sqlite", Check: func(context.Context) error { return nil }}
	broken := api.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }}

	status, body := send(t, newTestServer(t, []api.HealthCheck{healthy}), http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, body = send(t, newTestServer(t, []api.HealthCheck{healthy, broken}), http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body["status"])

	checks, ok := body["checks"].([]any)
	require.True(t, ok)
	require.Len(t, checks, 2)
	assert.Equal(t, "connection refused", checks[1].(map[string]any)["error"])

	status, body = send(t, newTestServer(t, nil), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}
