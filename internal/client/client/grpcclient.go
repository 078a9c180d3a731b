package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/glider/internal/common"
	v1 "github.com/dmitrijs2005/glider/internal/contract/v1"
	"github.com/google/uuid"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// newIdempotencyKey is a test seam.
var newIdempotencyKey = uuid.NewString

// sleep waits d or until ctx is done. Tests replace it.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// defaultRetryDelay is used when the server does not suggest one.
const defaultRetryDelay = 500 * time.Millisecond

// idempotentMethods carry an idempotency key and are retried once on
// Unavailable with the same key.
var idempotentMethods = map[string]bool{
	v1.FullMethod(v1.MethodInsertPassword):   true,
	v1.FullMethod(v1.MethodGeneratePassword): true,
}

// Session is what the client sends with every call.
type Session struct {
	Token         string
	DeviceType    string
	DeviceBrand   string
	DeviceModel   string
	DeviceBrowser string
}

func (s Session) pairs() []string {
	kv := []string{common.AccessTokenHeaderName, s.Token}
	for k, v := range map[string]string{
		common.DeviceTypeHeaderName:    s.DeviceType,
		common.DeviceBrandHeaderName:   s.DeviceBrand,
		common.DeviceModelHeaderName:   s.DeviceModel,
		common.DeviceBrowserHeaderName: s.DeviceBrowser,
	} {
		if v != "" {
			kv = append(kv, k, v)
		}
	}
	return kv
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      v1.VaultServiceClient
	session     Session
	timeout     time.Duration
}

// withMetadata replaces the given keys in the outgoing metadata of ctx.
func withMetadata(ctx context.Context, kv ...string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	for i := 0; i+1 < len(kv); i += 2 {
		md.Set(kv[i], kv[i+1])
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) sessionInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	ctx = withMetadata(ctx, s.session.pairs()...)

	if !idempotentMethods[method] {
		return s.invoke(ctx, method, req, reply, cc, invoker, opts...)
	}

	// the same key on retry lets the server replay instead of creating twice
	ctx = withMetadata(ctx, common.IdempotencyKeyHeaderName, newIdempotencyKey())

	err := s.invoke(ctx, method, req, reply, cc, invoker, opts...)
	st, ok := status.FromError(err)
	if err == nil || !ok || st.Code() != codes.Unavailable {
		return err
	}

	if err := sleep(ctx, retryDelay(st)); err != nil {
		return err
	}
	return s.invoke(ctx, method, req, reply, cc, invoker, opts...)
}

func (s *GRPCClient) invoke(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func retryDelay(st *status.Status) time.Duration {
	for _, d := range st.Details() {
		if ri, ok := d.(*errdetails.RetryInfo); ok && ri.GetRetryDelay() != nil {
			return ri.GetRetryDelay().AsDuration()
		}
	}
	return defaultRetryDelay
}

// NewGliderClient dials endpointURL. The connection is lazy; errors surface
// on the first call.
func NewGliderClient(endpointURL string, session Session, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, session: session, timeout: timeout}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.sessionInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = v1.NewVaultServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &v1.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) GeneratePassword(ctx context.Context, tail string, scopes *string, cfg v1.PasswordConfiguration) (string, string, error) {
	resp, err := s.client.GeneratePassword(ctx, &v1.GeneratePasswordRequest{Tail: tail, Scopes: scopes, Configuration: cfg})
	if err != nil {
		return "", "", s.mapError(err)
	}
	return resp.PasswordID, resp.Secret, nil
}

func (s *GRPCClient) InsertPassword(ctx context.Context, tail string, scopes *string, secret string, cfg *v1.PasswordConfiguration) (string, error) {
	resp, err := s.client.InsertPassword(ctx, &v1.InsertPasswordRequest{Tail: tail, Scopes: scopes, Secret: secret, Configuration: cfg})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.PasswordID, nil
}

func (s *GRPCClient) RefreshPassword(ctx context.Context, passwordID string) (string, error) {
	resp, err := s.client.RefreshPassword(ctx, &v1.PasswordIDRequest{PasswordID: passwordID})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Secret, nil
}

func (s *GRPCClient) CopyPassword(ctx context.Context, passwordID string) (string, error) {
	resp, err := s.client.CopyPassword(ctx, &v1.PasswordIDRequest{PasswordID: passwordID})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Secret, nil
}

func (s *GRPCClient) EditPassword(ctx context.Context, req *v1.EditPasswordRequest) error {
	_, err := s.client.EditPassword(ctx, req)
	return s.mapError(err)
}

func (s *GRPCClient) GetPassword(ctx context.Context, passwordID string) (*v1.Password, error) {
	resp, err := s.client.GetPassword(ctx, &v1.PasswordIDRequest{PasswordID: passwordID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Password, nil
}

func (s *GRPCClient) ListPasswords(ctx context.Context, req *v1.ListPasswordsRequest) (*v1.ListPasswordsResponse, error) {
	resp, err := s.client.ListPasswords(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) DeletePassword(ctx context.Context, passwordID string) error {
	_, err := s.client.DeletePassword(ctx, &v1.PasswordIDRequest{PasswordID: passwordID})
	return s.mapError(err)
}

func (s *GRPCClient) History(ctx context.Context, passwordID string) ([]v1.PasswordEvent, error) {
	resp, err := s.client.History(ctx, &v1.PasswordIDRequest{PasswordID: passwordID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Events, nil
}

func (s *GRPCClient) ListDevices(ctx context.Context) ([]v1.Device, error) {
	resp, err := s.client.ListDevices(ctx, &v1.ListDevicesRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Devices, nil
}

func (s *GRPCClient) DisconnectDevice(ctx context.Context, deviceID string) error {
	_, err := s.client.DisconnectDevice(ctx, &v1.DisconnectDeviceRequest{DeviceID: deviceID})
	return s.mapError(err)
}

func (s *GRPCClient) ArchiveVault(ctx context.Context, passphrase string) (*v1.ArchiveVaultResponse, error) {
	resp, err := s.client.ArchiveVault(ctx, &v1.ArchiveVaultRequest{Passphrase: passphrase})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

// mapError turns a gRPC status back into the shared sentinel errors so the
// CLI can match them with errors.Is.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.InvalidArgument:
		for _, d := range st.Details() {
			if br, ok := d.(*errdetails.BadRequest); ok && len(br.GetFieldViolations()) > 0 {
				v := br.GetFieldViolations()[0]
				return common.NewFieldError(v.GetField(), v.GetDescription())
			}
		}
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", common.ErrInvalidConfiguration, st.Message())
	case codes.NotFound:
		return common.ErrNotFound
	case codes.PermissionDenied:
		return common.ErrForbidden
	case codes.Unauthenticated:
		if st.Message() == common.ErrTokenExpired.Error() {
			return common.ErrTokenExpired
		}
		return common.ErrUnauthenticated
	case codes.Aborted:
		return ErrInProgress
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
