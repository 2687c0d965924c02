// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package restaurant_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tablefinder/internal/platform/migration"
	"github.com/taibuivan/tablefinder/internal/platform/sqlite"
	"github.com/taibuivan/tablefinder/internal/restaurant"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openTestDB returns a migrated SQLite database holding one user per name given.
func openTestDB(t *testing.T, usernames ...string) (*sql.DB, []int64) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "restaurant.db")
	require.NoError(t, migration.RunSQLite(path, discardLogger()))

	db, err := sqlite.Open(context.Background(), path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ids := make([]int64, 0, len(usernames))
	for _, username := range usernames {
		result, err := db.Exec(
			`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
			username, username+"@x.com", "hash", time.Now().UnixMilli(),
		)
		require.NoError(t, err)
		id, err := result.LastInsertId()
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return db, ids
}

// fakeFinder answers lookups with canned places and records what it was asked.
type fakeFinder struct {
	places []restaurant.Place
	err    error

	cities []string
	points [][2]float64
}

func (finder *fakeFinder) ByCity(_ context.Context, city string) ([]restaurant.Place, error) {
	finder.cities = append(finder.cities, city)
	return finder.places, finder.err
}

func (finder *fakeFinder) ByCoordinates(_ context.Context, lat, lon float64) ([]restaurant.Place, error) {
	finder.points = append(finder.points, [2]float64{lat, lon})
	return finder.places, finder.err
}

func ptr(value float64) *float64 { return &value }
