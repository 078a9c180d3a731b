package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/glider/internal/flagx"
	"github.com/dmitrijs2005/glider/internal/timex"
)

// JsonConfig is the shape of the JSON configuration file. Durations accept
// strings such as "15m" or integer nanoseconds. Absent fields leave the
// current value alone.
type JsonConfig struct {
	EndpointAddrGRPC           string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP           string         `json:"endpoint_addr_http"`
	DatabaseDSN                string         `json:"database_dsn"`
	SecretKey                  string         `json:"secret_key"`
	VaultKey                   string         `json:"vault_key"`
	VaultKeySalt               string         `json:"vault_key_salt"`
	PasswordMinLength          int            `json:"password_min_length"`
	PasswordMaxLength          int            `json:"password_max_length"`
	RedisURL                   string         `json:"redis_url"`
	IdempotencyTTL             timex.Duration `json:"idempotency_ttl"`
	LogLevel                   string         `json:"log_level"`
	S3RootUser                 string         `json:"s3_root_user"`
	S3RootPassword             string         `json:"s3_root_password"`
	S3Bucket                   string         `json:"s3_bucket"`
	S3Region                   string         `json:"s3_region"`
	S3BaseEndpoint             string         `json:"s3_base_endpoint"`
	ArchiveURLValidityDuration timex.Duration `json:"archive_url_validity_duration"`
}

// parseJson overlays the file named by -c or -config, if any.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFile(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.VaultKey, c.VaultKey)
	setString(&config.VaultKeySalt, c.VaultKeySalt)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.PasswordMinLength != 0 {
		config.PasswordMinLength = c.PasswordMinLength
	}
	if c.PasswordMaxLength != 0 {
		config.PasswordMaxLength = c.PasswordMaxLength
	}
	if c.IdempotencyTTL.Duration != 0 {
		config.IdempotencyTTL = c.IdempotencyTTL.Duration
	}
	if c.ArchiveURLValidityDuration.Duration != 0 {
		config.ArchiveURLValidityDuration = c.ArchiveURLValidityDuration.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
