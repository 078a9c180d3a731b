package grpc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/glider/internal/common"
	v1 "github.com/dmitrijs2005/glider/internal/contract/v1"
	"github.com/dmitrijs2005/glider/internal/server/metrics"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/dmitrijs2005/glider/internal/server/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var alice = session.Identity{UserID: "alice", DeviceID: "phone-1"}

func incoming(kv ...string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(kv...))
}

func TestSessionInterceptor_PingIsPublic(t *testing.T) {
	r := &fakeResolver{}
	s := newTestServer(r)

	info := &grpc.UnaryServerInfo{FullMethod: v1.FullMethod(v1.MethodPing)}
	resp, err := s.sessionInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "pong", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp)
	assert.Zero(t, r.calls)
}

func TestSessionInterceptor_Rejections(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: v1.FullMethod(v1.MethodCopyPassword)}
	never := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler must not be called")
		return nil, nil
	}

	tests := []struct {
		name     string
		resolver *fakeResolver
		ctx      context.Context
		code     codes.Code
	}{
		{"missing token", &fakeResolver{token: "tok"}, context.Background(), codes.Unauthenticated},
		{"wrong token", &fakeResolver{token: "tok"}, incoming(common.AccessTokenHeaderName, "other"), codes.Unauthenticated},
		{"bad device type", &fakeResolver{token: "tok"},
			incoming(common.AccessTokenHeaderName, "tok", common.DeviceTypeHeaderName, "TOASTER"), codes.InvalidArgument},
		{"expired", &fakeResolver{err: fmt.Errorf("%w: %w", common.ErrUnauthenticated, common.ErrTokenExpired)},
			incoming(common.AccessTokenHeaderName, "tok"), codes.Unauthenticated},
		{"device store down", &fakeResolver{err: fmt.Errorf("%w: touch device", common.ErrStorage)},
			incoming(common.AccessTokenHeaderName, "tok"), codes.Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.resolver)
			_, err := s.sessionInterceptor(tt.ctx, nil, info, never)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestSessionInterceptor_BindsIdentity(t *testing.T) {
	r := &fakeResolver{token: "tok", who: alice}
	s := newTestServer(r)

	ctx := incoming(
		common.AccessTokenHeaderName, "tok",
		common.DeviceTypeHeaderName, "WEB",
		common.DeviceBrandHeaderName, "Google",
		common.DeviceModelHeaderName, "Pixel",
		common.DeviceBrowserHeaderName, "Chrome",
	)
	info := &grpc.UnaryServerInfo{FullMethod: v1.FullMethod(v1.MethodListPasswords)}

	var got session.Identity
	_, err := s.sessionInterceptor(ctx, nil, info, func(ctx context.Context, req any) (any, error) {
		got, _ = session.FromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, alice, got)
	assert.Equal(t, models.DeviceInfo{Type: models.DeviceWeb, Brand: "Google", Model: "Pixel", Browser: "Chrome"}, r.lastInfo)
}

func TestSessionInterceptor_DefaultDeviceType(t *testing.T) {
	r := &fakeResolver{token: "tok", who: alice}
	s := newTestServer(r)

	info := &grpc.UnaryServerInfo{FullMethod: v1.FullMethod(v1.MethodListDevices)}
	_, err := s.sessionInterceptor(incoming(common.AccessTokenHeaderName, "tok"), nil, info,
		func(ctx context.Context, req any) (any, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, models.DeviceMobile, r.lastInfo.Type)
}

func TestMetricsInterceptor(t *testing.T) {
	c := metrics.NewCollector()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))
	s := newTestServer(&fakeResolver{}, WithMetrics(c))

	info := &grpc.UnaryServerInfo{FullMethod: v1.FullMethod(v1.MethodCopyPassword)}
	_, _ = s.metricsInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "not found")
	})
	_, _ = s.metricsInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		time.Sleep(time.Millisecond)
		return "ok", nil
	})

	n, err := testutil.GatherAndCount(reg, "glider_rpc_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecoveryInterceptor(t *testing.T) {
	s := newTestServer(&fakeResolver{})
	info := &grpc.UnaryServerInfo{FullMethod: v1.FullMethod(v1.MethodListPasswords)}

	resp, err := s.recoveryInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		panic("slice bounds out of range")
	})
	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))

	resp, err = s.recoveryInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}
