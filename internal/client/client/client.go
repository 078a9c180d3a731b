package client

import (
	"context"

	v1 "github.com/dmitrijs2005/glider/internal/contract/v1"
)

// Client is the vault API as the CLI sees it.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	GeneratePassword(ctx context.Context, tail string, scopes *string, cfg v1.PasswordConfiguration) (id string, secret string, err error)
	InsertPassword(ctx context.Context, tail string, scopes *string, secret string, cfg *v1.PasswordConfiguration) (string, error)
	RefreshPassword(ctx context.Context, passwordID string) (string, error)
	CopyPassword(ctx context.Context, passwordID string) (string, error)
	EditPassword(ctx context.Context, req *v1.EditPasswordRequest) error
	GetPassword(ctx context.Context, passwordID string) (*v1.Password, error)
	ListPasswords(ctx context.Context, req *v1.ListPasswordsRequest) (*v1.ListPasswordsResponse, error)
	DeletePassword(ctx context.Context, passwordID string) error
	History(ctx context.Context, passwordID string) ([]v1.PasswordEvent, error)
	ListDevices(ctx context.Context) ([]v1.Device, error)
	DisconnectDevice(ctx context.Context, deviceID string) error
	ArchiveVault(ctx context.Context, passphrase string) (*v1.ArchiveVaultResponse, error)
}
