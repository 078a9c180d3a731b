// Package config loads runtime configuration for the Glider CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file and GLIDER_* environment variables (see parseEnv).
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "session_token": "...",
//	  "device_type": "DESKTOP",
//	  "request_timeout": "10s"
//	}
package config
