// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package restaurant_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tablefinder/internal/platform/apperr"
	"github.com/taibuivan/tablefinder/internal/platform/middleware"
	"github.com/taibuivan/tablefinder/internal/platform/sec"
	"github.com/taibuivan/tablefinder/internal/restaurant"
)

// tokenTable authenticates fixed tokens to fixed users.
type tokenTable map[string]int64

func (table tokenTable) Authenticate(_ context.Context, token string) (*sec.SessionClaims, error) {
	userID, ok := table[token]
	if !ok {
		return nil, apperr.Unauthorized("Token invalid or expired")
	}
	return &sec.SessionClaims{UserID: userID}, nil
}

type httpEnv struct {
	router http.Handler
	finder *fakeFinder
	userID int64
}

func newHTTPEnv(t *testing.T) *httpEnv {
	t.Helper()
	db, ids := openTestDB(t, "alice")
	finder := &fakeFinder{places: parisPlaces}
	service := restaurant.NewService(finder, restaurant.NewSQLiteTransactionRepository(db), time.Second)

	router := chi.NewRouter()
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(discardLogger()))
	router.Mount("/", restaurant.NewHandler(service, middleware.RequireSession(tokenTable{"alice-token": ids[0]})).Routes())

	return &httpEnv{router: router, finder: finder, userID: ids[0]}
}

func (env *httpEnv) get(t *testing.T, path, token string) (int, map[string]any) {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, request)

	payload := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return recorder.Code, payload
}

/*
TestHTTP_SearchAndHistory verifies a search response and its history entry.
*/
func TestHTTP_SearchAndHistory(t *testing.T) {
	env := newHTTPEnv(t)

	status, body := env.get(t, "/restaurants?city=Paris", "alice-token")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"Chez Nous", "Le Bistro"}, body["restaurants"])

	status, body = env.get(t, "/restaurants?lat=48.85&lon=2.35", "alice-token")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, [][2]float64{{48.85, 2.35}}, env.finder.points)

	status, body = env.get(t, "/transactions", "alice-token")
	require.Equal(t, http.StatusOK, status)

	transactions, ok := body["transactions"].([]any)
	require.True(t, ok)
	require.Len(t, transactions, 2)

	first := transactions[0].(map[string]any)
	assert.NotZero(t, first["id"])
	assert.Equal(t, []any{"Chez Nous", "Le Bistro"}, first["restaurants"])

	date, err := time.Parse(time.RFC3339, first["date"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), date, 5*time.Second)
}

/*
TestHTTP_EmptyHistory verifies a new user gets an empty list, not null.
*/
func TestHTTP_EmptyHistory(t *testing.T) {
	env := newHTTPEnv(t)

	status, body := env.get(t, "/transactions", "alice-token")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["transactions"])
}

/*
TestHTTP_SearchRejections verifies query parsing and guard failures.
*/
func TestHTTP_SearchRejections(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		token   string
		status  int
		message string
	}{
		{"no_origin", "/restaurants", "alice-token", http.StatusBadRequest, restaurant.MsgMissingOrigin},
		{"lat_only", "/restaurants?lat=1", "alice-token", http.StatusBadRequest, restaurant.MsgMissingOrigin},
		{"bad_number", "/restaurants?lat=north&lon=2", "alice-token", http.StatusBadRequest, restaurant.MsgInvalidCoordinates},
		{"out_of_range", "/restaurants?lat=100&lon=2", "alice-token", http.StatusBadRequest, restaurant.MsgInvalidCoordinates},
		{"nan_lat", "/restaurants?lat=NaN&lon=0", "alice-token", http.StatusBadRequest, restaurant.MsgInvalidCoordinates},
		{"inf_lon", "/restaurants?lat=0&lon=Inf", "alice-token", http.StatusBadRequest, restaurant.MsgInvalidCoordinates},
		{"negative_inf_lat", "/restaurants?lat=-Inf&lon=0", "alice-token", http.StatusBadRequest, restaurant.MsgInvalidCoordinates},
		{"no_header", "/restaurants?city=Paris", "", http.StatusUnauthorized, "Authorization header missing"},
		{"unknown_token", "/restaurants?city=Paris", "forged", http.StatusUnauthorized, "Token invalid or expired"},
		{"history_no_header", "/transactions", "", http.StatusUnauthorized, "Authorization header missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newHTTPEnv(t)

			status, body := env.get(t, tt.path, tt.token)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, body["error"])
			assert.Empty(t, env.finder.cities)
			assert.Empty(t, env.finder.points)
		})
	}
}

/*
TestHTTP_UpstreamFailure verifies a lookup failure renders as a 500 with a stable message.
*/
func TestHTTP_UpstreamFailure(t *testing.T) {
	env := newHTTPEnv(t)
	env.finder.err = restaurant.ErrUpstream

	status, body := env.get(t, "/restaurants?city=Paris", "alice-token")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, restaurant.MsgSearchFailed, body["error"])
}
