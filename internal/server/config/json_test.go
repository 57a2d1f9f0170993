package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"endpoint_addr_http":        "127.0.0.1:8080",
		"database_dsn":              "postgres://json/db",
		"secret_key":                "json_secret",
		"session_validity_duration": "90m",
		"auth_username":             "jason",
		"auth_password_hash":        "$2a$10$hash",
		"cookie_secure":             true,
		"debug":                     true,
		"s3_root_user":              "user",
		"s3_root_password":          "password",
		"s3_bucket":                 "bucket",
		"s3_region":                 "region",
		"s3_base_endpoint":          "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		parseJson(cfg, []string{"-config", full})

		assert.Equal(t, "127.0.0.1:8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://json/db", cfg.DatabaseDSN)
		assert.Equal(t, "json_secret", cfg.SecretKey)
		assert.Equal(t, 90*time.Minute, cfg.SessionValidityDuration)
		assert.Equal(t, "jason", cfg.AuthUsername)
		assert.Equal(t, "$2a$10$hash", cfg.AuthPasswordHash)
		assert.True(t, cfg.CookieSecure)
		assert.True(t, cfg.Debug)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"database_dsn": "postgres://partial/db",
			"debug":        false,
		})

		cfg := &Config{}
		cfg.LoadDefaults()
		cfg.Debug = true
		parseJson(cfg, []string{"-c", partial})

		assert.Equal(t, "postgres://partial/db", cfg.DatabaseDSN)
		assert.Equal(t, "0.0.0.0:5000", cfg.EndpointAddrHTTP)
		assert.Equal(t, 12*time.Hour, cfg.SessionValidityDuration)
		assert.False(t, cfg.Debug)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		cfg := &Config{EndpointAddrHTTP: "defaults:1234", SecretKey: "key"}
		parseJson(cfg, nil)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg, []string{"-c", bad}) })
	})

	t.Run("LoadFile reads the same file", func(t *testing.T) {
		clearEnv(t)
		cfg, err := LoadFile(full)
		require.NoError(t, err)
		assert.Equal(t, "jason", cfg.AuthUsername)
	})
}
