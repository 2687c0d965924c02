// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tablefinder/internal/platform/config"
)

/*
TestLoad_Defaults verifies that optional settings fall back to their defaults.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SECRET_KEY", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/tablefinder")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, config.DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 10000, cfg.SearchRadiusMeters)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_MissingSecret verifies that the signing key is mandatory.
*/
func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/tablefinder")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestValidate_Drivers checks driver-specific requirements.
*/
func TestValidate_Drivers(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		hasError bool
	}{
		{"postgres_with_url", config.Config{StoreDriver: "postgres", DatabaseURL: "postgres://x", StoreTimeout: time.Second, SearchRadiusMeters: 1}, false},
		{"postgres_without_url", config.Config{StoreDriver: "postgres", StoreTimeout: time.Second, SearchRadiusMeters: 1}, true},
		{"sqlite_with_path", config.Config{StoreDriver: "sqlite", SQLitePath: "x.db", StoreTimeout: time.Second, SearchRadiusMeters: 1}, false},
		{"unknown_driver", config.Config{StoreDriver: "mysql", StoreTimeout: time.Second, SearchRadiusMeters: 1}, true},
		{"zero_timeout", config.Config{StoreDriver: "sqlite", SQLitePath: "x.db", SearchRadiusMeters: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestIsOriginAllowed verifies case-insensitive matching against the allow list.
*/
func TestIsOriginAllowed(t *testing.T) {
	cfg := config.Config{AllowedOrigins: []string{"https://app.tablefinder.io", " https://admin.tablefinder.io"}}

	assert.True(t, cfg.IsOriginAllowed("https://APP.tablefinder.io"))
	assert.True(t, cfg.IsOriginAllowed("https://admin.tablefinder.io"))
	assert.False(t, cfg.IsOriginAllowed("https://evil.example"))
}
