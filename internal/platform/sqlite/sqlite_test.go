// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tablefinder/internal/platform/sqlite"
)

/*
TestOpen_AppliesPragmas verifies the connection comes up with the expected settings.
*/
func TestOpen_AppliesPragmas(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "open.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var foreignKeys int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)

	var busyTimeout int
	require.NoError(t, db.QueryRow(`PRAGMA busy_timeout`).Scan(&busyTimeout))
	assert.Equal(t, 5000, busyTimeout)
}

/*
TestOpen_EmptyPath verifies that a blank path is refused.
*/
func TestOpen_EmptyPath(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := sqlite.Open(context.Background(), "  ", logger)
	assert.Error(t, err)
}
