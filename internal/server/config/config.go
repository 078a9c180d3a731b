// Package config handles configuration for the server component: defaults,
// then .env and environment variables, then an optional JSON file, then
// command-line flags. Each layer only overrides what it sets.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/glider/internal/cryptox"
	"github.com/dmitrijs2005/glider/internal/server/validator"
)

// Config holds runtime settings for the Glider server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - EndpointAddrHTTP: bind address for the admin HTTP endpoint (metrics, health).
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for verifying session JWTs (HS256).
//   - VaultKey: 64 hex characters, or a passphrase stretched with VaultKeySalt.
//   - PasswordMinLength / PasswordMaxLength: password length policy.
//   - RedisURL: idempotency cache; empty disables idempotent replays.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint:
//     object storage for vault archives.
type Config struct {
	EndpointAddrGRPC           string
	EndpointAddrHTTP           string
	DatabaseDSN                string
	SecretKey                  string
	VaultKey                   string
	VaultKeySalt               string
	PasswordMinLength          int
	PasswordMaxLength          int
	RedisURL                   string
	IdempotencyTTL             time.Duration
	LogLevel                   string
	S3RootUser                 string
	S3RootPassword             string
	S3Bucket                   string
	S3Region                   string
	S3BaseEndpoint             string
	ArchiveURLValidityDuration time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: the JWT key is insecure for production and must be overridden. There
// is no default vault key; it seals every stored secret and must be set.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.VaultKey = ""
	c.VaultKeySalt = "glider"
	c.PasswordMinLength = validator.DefaultPasswordMinLength
	c.PasswordMaxLength = validator.DefaultPasswordMaxLength
	c.RedisURL = ""
	c.IdempotencyTTL = 24 * time.Hour
	c.LogLevel = "info"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "vault"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.ArchiveURLValidityDuration = 15 * time.Minute
}

// LoadConfig builds a Config from defaults, the environment (after loading
// envFile if it exists), the JSON file named by -c/-config and finally the
// flags in args.
func LoadConfig(args []string, envFile string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, envFile); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Bounds returns the password length policy.
func (c *Config) Bounds() validator.Bounds {
	return validator.Bounds{Min: c.PasswordMinLength, Max: c.PasswordMaxLength}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.EndpointAddrGRPC == "" {
		errs = append(errs, errors.New("grpc address is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.VaultKey == "" {
		errs = append(errs, fmt.Errorf("vault key is empty, set %s or -k", EnvVaultKey))
	}
	if !c.Bounds().Valid() {
		errs = append(errs, fmt.Errorf("invalid password length bounds [%d, %d]", c.PasswordMinLength, c.PasswordMaxLength))
	}
	if c.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("idempotency ttl must be positive"))
	}
	if c.ArchiveURLValidityDuration <= 0 {
		errs = append(errs, errors.New("archive url validity must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// MasterKey returns the vault master key. A 64-character hex VaultKey is
// used as is; anything else is stretched with argon2id.
func (c *Config) MasterKey() []byte {
	if len(c.VaultKey) == 2*cryptox.KeySize {
		if k, err := hex.DecodeString(c.VaultKey); err == nil {
			return k
		}
	}
	return cryptox.DeriveMasterKey([]byte(c.VaultKey), []byte(c.VaultKeySalt))
}
