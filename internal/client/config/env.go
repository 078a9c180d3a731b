package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvServerAddr     = "GLIDER_SERVER_ADDR"
	EnvSessionToken   = "GLIDER_SESSION_TOKEN"
	EnvDeviceType     = "GLIDER_DEVICE_TYPE"
	EnvDeviceBrand    = "GLIDER_DEVICE_BRAND"
	EnvDeviceModel    = "GLIDER_DEVICE_MODEL"
	EnvDeviceBrowser  = "GLIDER_DEVICE_BROWSER"
	EnvRequestTimeout = "GLIDER_REQUEST_TIMEOUT"
)

// parseEnv loads envFile (variables already set win) and overlays the
// GLIDER_* variables that are present. A missing envFile is not an error.
func parseEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	strs := map[string]*string{
		EnvServerAddr:    &cfg.ServerEndpointAddr,
		EnvSessionToken:  &cfg.SessionToken,
		EnvDeviceType:    &cfg.DeviceType,
		EnvDeviceBrand:   &cfg.DeviceBrand,
		EnvDeviceModel:   &cfg.DeviceModel,
		EnvDeviceBrowser: &cfg.DeviceBrowser,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(EnvRequestTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}
