// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tablefinder/internal/auth"
	"github.com/taibuivan/tablefinder/internal/platform/migration"
	"github.com/taibuivan/tablefinder/internal/platform/sec"
	"github.com/taibuivan/tablefinder/internal/platform/sqlite"
)

const testSecret = "test-secret"

// testEnv bundles a service wired to real stores: a migrated SQLite file and an in-memory Redis.
type testEnv struct {
	service *auth.Service
	users   *auth.SQLiteUserRepository
	cache   *auth.RedisSessionCache
	tokens  *sec.TokenService
	redis   *miniredis.Miniredis
	db      *sql.DB
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth.db")
	require.NoError(t, migration.RunSQLite(path, discardLogger()))

	db, err := sqlite.Open(context.Background(), path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newRedisCache(t *testing.T) (*auth.RedisSessionCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return auth.NewSessionCache(client), server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := openTestDB(t)
	cache, server := newRedisCache(t)
	tokens, err := sec.NewTokenService(testSecret, "tablefinder")
	require.NoError(t, err)

	users := auth.NewSQLiteUserRepository(db)

	return &testEnv{
		service: auth.NewService(users, cache, tokens, 3*time.Second),
		users:   users,
		cache:   cache,
		tokens:  tokens,
		redis:   server,
		db:      db,
	}
}

// register creates a user and fails the test on error.
func (env *testEnv) register(t *testing.T, username, email, password string) int64 {
	t.Helper()
	id, err := env.service.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return id
}

func (env *testEnv) countUsers(t *testing.T) int {
	t.Helper()
	var count int
	require.NoError(t, env.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	return count
}
