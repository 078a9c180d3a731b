package v1

import (
	"context"

	"github.com/dmitrijs2005/glider/internal/rpcx"
	"google.golang.org/grpc"
)

// VaultServiceServer is the server API of the vault service.
type VaultServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	InsertPassword(context.Context, *InsertPasswordRequest) (*PasswordIDResponse, error)
	GeneratePassword(context.Context, *GeneratePasswordRequest) (*GeneratePasswordResponse, error)
	RefreshPassword(context.Context, *PasswordIDRequest) (*SecretResponse, error)
	EditPassword(context.Context, *EditPasswordRequest) (*Empty, error)
	CopyPassword(context.Context, *PasswordIDRequest) (*SecretResponse, error)
	GetPassword(context.Context, *PasswordIDRequest) (*GetPasswordResponse, error)
	ListPasswords(context.Context, *ListPasswordsRequest) (*ListPasswordsResponse, error)
	DeletePassword(context.Context, *PasswordIDRequest) (*Empty, error)
	History(context.Context, *PasswordIDRequest) (*HistoryResponse, error)
	ListDevices(context.Context, *ListDevicesRequest) (*ListDevicesResponse, error)
	DisconnectDevice(context.Context, *DisconnectDeviceRequest) (*Empty, error)
	ArchiveVault(context.Context, *ArchiveVaultRequest) (*ArchiveVaultResponse, error)
}

func unary[Req, Resp any](method string, call func(VaultServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(VaultServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(VaultServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// VaultService_ServiceDesc is the grpc.ServiceDesc for the vault service.
var VaultService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, VaultServiceServer.Ping),
		unary(MethodInsertPassword, VaultServiceServer.InsertPassword),
		unary(MethodGeneratePassword, VaultServiceServer.GeneratePassword),
		unary(MethodRefreshPassword, VaultServiceServer.RefreshPassword),
		unary(MethodEditPassword, VaultServiceServer.EditPassword),
		unary(MethodCopyPassword, VaultServiceServer.CopyPassword),
		unary(MethodGetPassword, VaultServiceServer.GetPassword),
		unary(MethodListPasswords, VaultServiceServer.ListPasswords),
		unary(MethodDeletePassword, VaultServiceServer.DeletePassword),
		unary(MethodHistory, VaultServiceServer.History),
		unary(MethodListDevices, VaultServiceServer.ListDevices),
		unary(MethodDisconnectDevice, VaultServiceServer.DisconnectDevice),
		unary(MethodArchiveVault, VaultServiceServer.ArchiveVault),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "glider/vault/v1",
}

func RegisterVaultServiceServer(s grpc.ServiceRegistrar, srv VaultServiceServer) {
	s.RegisterService(&VaultService_ServiceDesc, srv)
}

// VaultServiceClient is the client API of the vault service.
type VaultServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	InsertPassword(ctx context.Context, in *InsertPasswordRequest, opts ...grpc.CallOption) (*PasswordIDResponse, error)
	GeneratePassword(ctx context.Context, in *GeneratePasswordRequest, opts ...grpc.CallOption) (*GeneratePasswordResponse, error)
	RefreshPassword(ctx context.Context, in *PasswordIDRequest, opts ...grpc.CallOption) (*SecretResponse, error)
	EditPassword(ctx context.Context, in *EditPasswordRequest, opts ...grpc.CallOption) (*Empty, error)
	CopyPassword(ctx context.Context, in *PasswordIDRequest, opts ...grpc.CallOption) (*SecretResponse, error)
	GetPassword(ctx context.Context, in *PasswordIDRequest, opts ...grpc.CallOption) (*GetPasswordResponse, error)
	ListPasswords(ctx context.Context, in *ListPasswordsRequest, opts ...grpc.CallOption) (*ListPasswordsResponse, error)
	DeletePassword(ctx context.Context, in *PasswordIDRequest, opts ...grpc.CallOption) (*Empty, error)
	History(ctx context.Context, in *PasswordIDRequest, opts ...grpc.CallOption) (*HistoryResponse, error)
	ListDevices(ctx context.Context, in *ListDevicesRequest, opts ...grpc.CallOption) (*ListDevicesResponse, error)
	DisconnectDevice(ctx context.Context, in *DisconnectDeviceRequest, opts ...grpc.CallOption) (*Empty, error)
	ArchiveVault(ctx context.Context, in *ArchiveVaultRequest, opts ...grpc.CallOption) (*ArchiveVaultResponse, error)
}

type vaultServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewVaultServiceClient returns a client that speaks the JSON codec over cc.
func NewVaultServiceClient(cc grpc.ClientConnInterface) VaultServiceClient {
	return &vaultServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(rpcx.Name)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *vaultServiceClient) InsertPassword(ctx context.Context, in *InsertPasswordRequest, opts ...grpc.CallOption) (*PasswordIDResponse, error) {
	return invoke[PasswordIDResponse](ctx, c.cc, MethodInsertPassword, in, opts)
}

func (c *vaultServiceClient) GeneratePassword(ctx context.Context, in *GeneratePasswordRequest, opts ...grpc.CallOption) (*GeneratePasswordResponse, error) {
	return invoke[GeneratePasswordResponse](ctx, c.cc, MethodGeneratePassword, in, opts)
}

func (c *vaultServiceClient) RefreshPassword(ctx context.Context, in *PasswordIDRequest, opts ...grpc.CallOption) (*SecretResponse, error) {
	return invoke[SecretResponse](ctx, c.cc, MethodRefreshPassword, in, opts)
}

func (c *vaultServiceClient) EditPassword(ctx context.Context, in *EditPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodEditPassword, in, opts)
}

func (c *vaultServiceClient) CopyPassword(ctx context.Context, in *PasswordIDRequest, opts ...grpc.CallOption) (*SecretResponse, error) {
	return invoke[SecretResponse](ctx, c.cc, MethodCopyPassword, in, opts)
}

func (c *vaultServiceClient) GetPassword(ctx context.Context, in *PasswordIDRequest, opts ...grpc.CallOption) (*GetPasswordResponse, error) {
	return invoke[GetPasswordResponse](ctx, c.cc, MethodGetPassword, in, opts)
}

func (c *vaultServiceClient) ListPasswords(ctx context.Context, in *ListPasswordsRequest, opts ...grpc.CallOption) (*ListPasswordsResponse, error) {
	return invoke[ListPasswordsResponse](ctx, c.cc, MethodListPasswords, in, opts)
}

func (c *vaultServiceClient) DeletePassword(ctx context.Context, in *PasswordIDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeletePassword, in, opts)
}

func (c *vaultServiceClient) History(ctx context.Context, in *PasswordIDRequest, opts ...grpc.CallOption) (*HistoryResponse, error) {
	return invoke[HistoryResponse](ctx, c.cc, MethodHistory, in, opts)
}

func (c *vaultServiceClient) ListDevices(ctx context.Context, in *ListDevicesRequest, opts ...grpc.CallOption) (*ListDevicesResponse, error) {
	return invoke[ListDevicesResponse](ctx, c.cc, MethodListDevices, in, opts)
}

func (c *vaultServiceClient) DisconnectDevice(ctx context.Context, in *DisconnectDeviceRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDisconnectDevice, in, opts)
}

func (c *vaultServiceClient) ArchiveVault(ctx context.Context, in *ArchiveVaultRequest, opts ...grpc.CallOption) (*ArchiveVaultResponse, error) {
	return invoke[ArchiveVaultResponse](ctx, c.cc, MethodArchiveVault, in, opts)
}
