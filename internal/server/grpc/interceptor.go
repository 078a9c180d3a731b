package grpc

import (
	"context"
	"path"
	"runtime/debug"
	"time"

	"github.com/dmitrijs2005/glider/internal/common"
	v1 "github.com/dmitrijs2005/glider/internal/contract/v1"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/dmitrijs2005/glider/internal/server/session"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// publicMethods can be called without a session.
var publicMethods = map[string]bool{
	v1.FullMethod(v1.MethodPing): true,
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// deviceInfoFromMetadata reads the device descriptors a client sends with
// every call. The device id itself always comes from the session token.
func deviceInfoFromMetadata(md metadata.MD) (models.DeviceInfo, error) {
	typ, err := models.ParseDeviceType(firstValue(md, common.DeviceTypeHeaderName))
	if err != nil {
		return models.DeviceInfo{}, common.NewFieldError(common.DeviceTypeHeaderName, err.Error())
	}
	return models.DeviceInfo{
		Type:    typ,
		Brand:   firstValue(md, common.DeviceBrandHeaderName),
		Model:   firstValue(md, common.DeviceModelHeaderName),
		Browser: firstValue(md, common.DeviceBrowserHeaderName),
	}, nil
}

// sessionInterceptor resolves the session token into an identity, touches
// the calling device and stores the identity in the request context.
func (s *GRPCServer) sessionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	md, _ := metadata.FromIncomingContext(ctx)
	token := firstValue(md, common.AccessTokenHeaderName)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	device, err := deviceInfoFromMetadata(md)
	if err != nil {
		return nil, toStatus(err).Err()
	}

	who, err := s.binder.Resolve(ctx, token, device)
	if err != nil {
		st := toStatus(err)
		if st.Code() == codes.Internal || st.Code() == codes.Unavailable {
			s.logger.Error(ctx, "session bind failed", "method", info.FullMethod, "error", err)
		}
		return nil, st.Err()
	}

	return handler(session.WithIdentity(ctx, who), req)
}

// metricsInterceptor counts every call by method and resulting code.
func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if s.metrics != nil {
		s.metrics.ObserveRequest(path.Base(info.FullMethod), status.Code(err).String(), time.Since(start))
	}
	return resp, err
}

// recoveryInterceptor turns a handler panic into codes.Internal and keeps
// the server running.
func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error(ctx, "handler panicked", "method", info.FullMethod, "panic", p, "stack", string(debug.Stack()))
			resp, err = nil, status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}
