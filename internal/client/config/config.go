package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the Glider CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - SessionToken: token issued by the login service; sent on every call.
//   - DeviceType / DeviceBrand / DeviceModel / DeviceBrowser: describe this
//     device to the server, which records it on first contact.
//   - RequestTimeout: deadline applied to each RPC.
type Config struct {
	ServerEndpointAddr string
	SessionToken       string
	DeviceType         string
	DeviceBrand        string
	DeviceModel        string
	DeviceBrowser      string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionToken = ""
	c.DeviceType = "DESKTOP"
	c.DeviceBrand = ""
	c.DeviceModel = ""
	c.DeviceBrowser = ""
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (after loading envFile if present), the JSON file named by
// -c/-config and finally the flags in args. Later sources take precedence
// over earlier ones.
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

// Validate rejects settings the client cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.ServerEndpointAddr == "" {
		errs = append(errs, errors.New("server address is empty"))
	}
	if c.SessionToken == "" {
		errs = append(errs, errors.New("session token is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
