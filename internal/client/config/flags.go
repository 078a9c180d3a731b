package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/glider/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string     address and port of the backend server
//	-s string     session token
//	-d string     device type (MOBILE, DESKTOP, WEB)
//	-b string     device brand
//	-m string     device model
//	-w string     browser name
//	-t duration   per-request timeout
//
// Only these flags are picked out of args, so -c does not fail parsing.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, "-a", "-s", "-d", "-b", "-m", "-w", "-t")

	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.SessionToken, "s", cfg.SessionToken, "session token")
	fs.StringVar(&cfg.DeviceType, "d", cfg.DeviceType, "device type")
	fs.StringVar(&cfg.DeviceBrand, "b", cfg.DeviceBrand, "device brand")
	fs.StringVar(&cfg.DeviceModel, "m", cfg.DeviceModel, "device model")
	fs.StringVar(&cfg.DeviceBrowser, "w", cfg.DeviceBrowser, "browser")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")

	return fs.Parse(args)
}
