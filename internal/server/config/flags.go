package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/glider/internal/flagx"
)

// parseFlags overlays the short command-line flags.
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   admin HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN, empty for the in-memory store
//	-s string   JWT HMAC secret key
//	-k string   vault master key or passphrase
//	-m int      minimum password length
//	-x int      maximum password length
//	-r string   Redis URL for idempotent replays
//	-l string   log level (debug, info, warn, error)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-t duration archive URL validity
//
// Only these flags are picked out of args, so -c and unknown flags of other
// components do not fail parsing.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, "-a", "-w", "-d", "-s", "-k", "-m", "-x", "-r", "-l", "-u", "-p", "-b", "-g", "-e", "-t")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "address and port to run admin HTTP server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.VaultKey, "k", config.VaultKey, "vault key")
	fs.IntVar(&config.PasswordMinLength, "m", config.PasswordMinLength, "minimum password length")
	fs.IntVar(&config.PasswordMaxLength, "x", config.PasswordMaxLength, "maximum password length")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.DurationVar(&config.ArchiveURLValidityDuration, "t", config.ArchiveURLValidityDuration, "archive URL validity")

	return fs.Parse(args)
}
