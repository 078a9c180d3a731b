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

func Test_parseJson_LoadsAllFields(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"endpoint_addr_grpc":            "www.example:9000",
		"endpoint_addr_http":            ":8181",
		"database_dsn":                  "postgres://x",
		"secret_key":                    "my_secret_key",
		"vault_key":                     "vk",
		"vault_key_salt":                "salt",
		"password_min_length":           10,
		"password_max_length":           20,
		"redis_url":                     "redis://r",
		"idempotency_ttl":               "1h",
		"log_level":                     "debug",
		"s3_root_user":                  "user",
		"s3_root_password":              "password",
		"s3_bucket":                     "bucket",
		"s3_region":                     "region",
		"s3_base_endpoint":              "base_endpoint",
		"archive_url_validity_duration": int64(time.Minute),
	})

	cfg := &Config{}
	require.NoError(t, parseJson(cfg, []string{"-config", path}))

	assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
	assert.Equal(t, ":8181", cfg.EndpointAddrHTTP)
	assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
	assert.Equal(t, "my_secret_key", cfg.SecretKey)
	assert.Equal(t, "vk", cfg.VaultKey)
	assert.Equal(t, "salt", cfg.VaultKeySalt)
	assert.Equal(t, 10, cfg.PasswordMinLength)
	assert.Equal(t, 20, cfg.PasswordMaxLength)
	assert.Equal(t, "redis://r", cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "user", cfg.S3RootUser)
	assert.Equal(t, "password", cfg.S3RootPassword)
	assert.Equal(t, "bucket", cfg.S3Bucket)
	assert.Equal(t, "region", cfg.S3Region)
	assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
	assert.Equal(t, time.Minute, cfg.ArchiveURLValidityDuration)
}

func Test_parseJson_PartialKeepsValues(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{"s3_bucket": "other"})

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseJson(cfg, []string{"-c", path}))

	assert.Equal(t, "other", cfg.S3Bucket)
	assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}

func Test_parseJson_NoFile(t *testing.T) {
	cfg := &Config{SecretKey: "keep"}
	require.NoError(t, parseJson(cfg, []string{"-a", ":1"}))
	assert.Equal(t, "keep", cfg.SecretKey)
}

func Test_parseJson_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	err := parseJson(&Config{}, []string{"-c", path})
	assert.ErrorContains(t, err, "parse config file")
}
