package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/glider/internal/flagx"
	"github.com/dmitrijs2005/glider/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as
// a string like "10s" or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	SessionToken       string         `json:"session_token"`
	DeviceType         string         `json:"device_type"`
	DeviceBrand        string         `json:"device_brand"`
	DeviceModel        string         `json:"device_model"`
	DeviceBrowser      string         `json:"device_browser"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the file named by -c or -config, if any.
// Absent fields leave the current value alone.
func parseJson(cfg *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFile(args)
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	for dst, v := range map[*string]string{
		&cfg.ServerEndpointAddr: jc.ServerEndpointAddr,
		&cfg.SessionToken:       jc.SessionToken,
		&cfg.DeviceType:         jc.DeviceType,
		&cfg.DeviceBrand:        jc.DeviceBrand,
		&cfg.DeviceModel:        jc.DeviceModel,
		&cfg.DeviceBrowser:      jc.DeviceBrowser,
	} {
		if v != "" {
			*dst = v
		}
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
