package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvGRPCAddr           = "GLIDER_GRPC_ADDR"
	EnvHTTPAddr           = "GLIDER_HTTP_ADDR"
	EnvDatabaseDSN        = "GLIDER_DATABASE_DSN"
	EnvSecretKey          = "GLIDER_SECRET_KEY"
	EnvVaultKey           = "GLIDER_VAULT_KEY"
	EnvVaultKeySalt       = "GLIDER_VAULT_KEY_SALT"
	EnvPasswordMinLength  = "GLIDER_PASSWORD_MIN_LENGTH"
	EnvPasswordMaxLength  = "GLIDER_PASSWORD_MAX_LENGTH"
	EnvRedisURL           = "GLIDER_REDIS_URL"
	EnvIdempotencyTTL     = "GLIDER_IDEMPOTENCY_TTL"
	EnvLogLevel           = "GLIDER_LOG_LEVEL"
	EnvS3RootUser         = "GLIDER_S3_ROOT_USER"
	EnvS3RootPassword     = "GLIDER_S3_ROOT_PASSWORD"
	EnvS3Bucket           = "GLIDER_S3_BUCKET"
	EnvS3Region           = "GLIDER_S3_REGION"
	EnvS3BaseEndpoint     = "GLIDER_S3_BASE_ENDPOINT"
	EnvArchiveURLValidity = "GLIDER_ARCHIVE_URL_VALIDITY"
)

// parseEnv loads envFile into the process environment (variables already set
// win) and overlays every GLIDER_* variable that is present. A missing
// envFile is not an error.
func parseEnv(config *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	strs := map[string]*string{
		EnvGRPCAddr:       &config.EndpointAddrGRPC,
		EnvHTTPAddr:       &config.EndpointAddrHTTP,
		EnvDatabaseDSN:    &config.DatabaseDSN,
		EnvSecretKey:      &config.SecretKey,
		EnvVaultKey:       &config.VaultKey,
		EnvVaultKeySalt:   &config.VaultKeySalt,
		EnvRedisURL:       &config.RedisURL,
		EnvLogLevel:       &config.LogLevel,
		EnvS3RootUser:     &config.S3RootUser,
		EnvS3RootPassword: &config.S3RootPassword,
		EnvS3Bucket:       &config.S3Bucket,
		EnvS3Region:       &config.S3Region,
		EnvS3BaseEndpoint: &config.S3BaseEndpoint,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		EnvPasswordMinLength: &config.PasswordMinLength,
		EnvPasswordMaxLength: &config.PasswordMaxLength,
	}
	for name, dst := range ints {
		if v, ok := os.LookupEnv(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		EnvIdempotencyTTL:     &config.IdempotencyTTL,
		EnvArchiveURLValidity: &config.ArchiveURLValidityDuration,
	}
	for name, dst := range durations {
		if v, ok := os.LookupEnv(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = d
		}
	}
	return nil
}
