package grpc

import (
	"context"
	"net"
	"time"

	v1 "github.com/dmitrijs2005/glider/internal/contract/v1"
	"github.com/dmitrijs2005/glider/internal/cryptox"
	"github.com/dmitrijs2005/glider/internal/logging"
	"github.com/dmitrijs2005/glider/internal/server/metrics"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/dmitrijs2005/glider/internal/server/services"
	"github.com/dmitrijs2005/glider/internal/server/session"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
)

// Vault is the password API the transport exposes.
type Vault interface {
	InsertPassword(ctx context.Context, who session.Identity, in services.InsertInput) (string, error)
	GeneratePassword(ctx context.Context, who session.Identity, tail string, scopes *string,
		cfg models.PasswordConfiguration) (string, string, error)
	RefreshPassword(ctx context.Context, who session.Identity, passwordID string) (string, error)
	EditPassword(ctx context.Context, who session.Identity, passwordID string, in services.EditInput) error
	CopyPassword(ctx context.Context, who session.Identity, passwordID string) (string, error)
	GetPassword(ctx context.Context, who session.Identity, passwordID string) (*models.Password, error)
	ListPasswords(ctx context.Context, who session.Identity, opts services.ListOptions) (*models.Keychain, error)
	DeletePassword(ctx context.Context, who session.Identity, passwordID string) error
	History(ctx context.Context, who session.Identity, passwordID string) ([]models.PasswordEvent, error)
}

type Devices interface {
	ListDevices(ctx context.Context, who session.Identity) ([]*models.Device, error)
	DisconnectDevice(ctx context.Context, who session.Identity, deviceID string) error
}

type Archiver interface {
	ArchiveVault(ctx context.Context, who session.Identity, passphrase string) (*services.Archive, error)
}

// SessionResolver turns a session token into the caller's identity.
type SessionResolver interface {
	Resolve(ctx context.Context, token string, info models.DeviceInfo) (session.Identity, error)
}

type GRPCServer struct {
	address string
	vault   Vault
	devices Devices
	archive Archiver
	binder  SessionResolver
	idem    *Idempotency
	metrics *metrics.Collector
	logger  logging.Logger
}

type Option func(*GRPCServer)

// WithIdempotency caches create responses in Redis for ttl, sealed with
// sealer.
func WithIdempotency(cache *redis.Client, ttl time.Duration, sealer *cryptox.Sealer) Option {
	return func(s *GRPCServer) {
		s.idem = NewIdempotency(cache, ttl, sealer, s.logger)
	}
}

// WithMetrics records every RPC in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *GRPCServer) {
		s.metrics = c
	}
}

func NewGRPCServer(a string, l logging.Logger, vault Vault, devices Devices, archive Archiver,
	binder SessionResolver, opts ...Option) *GRPCServer {

	s := &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		vault:   vault,
		devices: devices,
		archive: archive,
		binder:  binder,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// newServer builds the grpc.Server with the interceptor chain and the vault
// service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{s.metricsInterceptor, s.recoveryInterceptor, s.sessionInterceptor}
	if s.idem != nil {
		interceptors = append(interceptors, s.idem.Interceptor(s.metrics))
	}
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	v1.RegisterVaultServiceServer(srv, &handler{s})
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
