package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Empty(t, c.DatabaseDSN)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 8, c.PasswordMinLength)
	assert.Equal(t, 32, c.PasswordMaxLength)
	assert.Equal(t, 24*time.Hour, c.IdempotencyTTL)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "vault", c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.Equal(t, 15*time.Minute, c.ArchiveURLValidityDuration)
	assert.Empty(t, c.VaultKey)
	assert.ErrorContains(t, c.Validate(), "vault key is empty")

	c.VaultKey = "correct horse battery staple"
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GLIDER_S3_BUCKET=from-dotenv\nGLIDER_LOG_LEVEL=warn\n"), 0o600))

	jsonFile := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"log_level":          "debug",
		"endpoint_addr_grpc": ":7000",
	})

	// godotenv writes to the process environment; let t.Setenv restore it.
	t.Setenv(EnvLogLevel, "")
	require.NoError(t, os.Unsetenv(EnvLogLevel))

	t.Setenv(EnvVaultKey, "vk")
	t.Setenv(EnvRedisURL, "redis://env:6379/0")
	t.Setenv(EnvPasswordMaxLength, "40")
	t.Setenv(EnvS3Bucket, "from-env")

	cfg, err := LoadConfig([]string{"-c", jsonFile, "-a", ":9000", "--unknown", "x"}, envFile)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.EndpointAddrGRPC, "flag beats json")
	assert.Equal(t, "debug", cfg.LogLevel, "json beats dotenv")
	assert.Equal(t, "from-env", cfg.S3Bucket, "process env beats dotenv")
	assert.Equal(t, "redis://env:6379/0", cfg.RedisURL)
	assert.Equal(t, 40, cfg.PasswordMaxLength)
	assert.Equal(t, 8, cfg.PasswordMinLength, "defaults survive")
}

func TestLoadConfig_MissingEnvFileIgnored(t *testing.T) {
	t.Setenv(EnvVaultKey, "vk")
	cfg, err := LoadConfig(nil, filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("no vault key", func(t *testing.T) {
		t.Setenv(EnvVaultKey, "")
		_, err := LoadConfig(nil, "")
		assert.ErrorContains(t, err, EnvVaultKey)
	})
	t.Run("bad env int", func(t *testing.T) {
		t.Setenv(EnvPasswordMinLength, "eight")
		_, err := LoadConfig(nil, "")
		assert.ErrorContains(t, err, EnvPasswordMinLength)
	})
	t.Run("bad env duration", func(t *testing.T) {
		t.Setenv(EnvIdempotencyTTL, "soon")
		_, err := LoadConfig(nil, "")
		assert.ErrorContains(t, err, EnvIdempotencyTTL)
	})
	t.Run("invalid bounds", func(t *testing.T) {
		_, err := LoadConfig([]string{"-m", "20", "-x", "10"}, "")
		assert.ErrorContains(t, err, "invalid password length bounds")
	})
	t.Run("missing json file", func(t *testing.T) {
		_, err := LoadConfig([]string{"-config", filepath.Join(t.TempDir(), "nope.json")}, "")
		assert.Error(t, err)
	})
	t.Run("bad flag value", func(t *testing.T) {
		_, err := LoadConfig([]string{"-m", "many"}, "")
		assert.Error(t, err)
	})
}

func TestValidate_CollectsAll(t *testing.T) {
	c := Config{}
	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"grpc address", "secret key", "vault key", "bounds", "idempotency", "archive"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestMasterKey(t *testing.T) {
	c := Config{VaultKey: "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"}
	k := c.MasterKey()
	require.Len(t, k, 32)
	assert.Equal(t, byte(0x1f), k[31])

	c = Config{VaultKey: "correct horse", VaultKeySalt: "s1"}
	a := c.MasterKey()
	require.Len(t, a, 32)
	assert.Equal(t, a, c.MasterKey())

	c.VaultKeySalt = "s2"
	assert.False(t, bytes.Equal(a, c.MasterKey()))
}

func TestBounds(t *testing.T) {
	c := Config{PasswordMinLength: 4, PasswordMaxLength: 6}
	b := c.Bounds()
	assert.True(t, b.PasswordLengthValid(4))
	assert.False(t, b.PasswordLengthValid(7))
}
