package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/glider/internal/client/client"
	"github.com/dmitrijs2005/glider/internal/client/config"
	"github.com/dmitrijs2005/glider/internal/common"
)

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := client.NewGliderClient(c.ServerEndpointAddr, client.Session{
		Token:         c.SessionToken,
		DeviceType:    c.DeviceType,
		DeviceBrand:   c.DeviceBrand,
		DeviceModel:   c.DeviceModel,
		DeviceBrowser: c.DeviceBrowser,
	}, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return newApp(c, apiClient, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, cl client.Client, reader *bufio.Reader, out io.Writer) *App {
	return &App{config: c, client: cl, reader: reader, out: out}
}

// Run checks the server once and then serves the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.client.Close(); err != nil {
			log.Printf("error closing client: %s", err.Error())
		}
	}()

	if err := a.client.Ping(ctx); err != nil {
		log.Printf("server %s is not reachable: %s", a.config.ServerEndpointAddr, describeError(err))
	}

	runREPL(ctx, a, a.reader)
}

// describeError renders err for the terminal.
func describeError(err error) string {
	var fe *common.FieldError
	switch {
	case errors.As(err, &fe):
		return fmt.Sprintf("invalid %s: %s", fe.Field, fe.Reason)
	case errors.Is(err, common.ErrTokenExpired):
		return "session expired, log in again and update the session token"
	case errors.Is(err, common.ErrUnauthenticated):
		return "not logged in: check the session token"
	case errors.Is(err, common.ErrNotFound):
		return "no such password or device"
	case errors.Is(err, common.ErrForbidden):
		return "that item belongs to another account"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.Is(err, client.ErrInProgress):
		return "the same request is still running, try again shortly"
	default:
		return err.Error()
	}
}
