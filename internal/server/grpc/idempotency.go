package grpc

import (
	"context"
	"errors"
	"path"
	"time"

	"github.com/dmitrijs2005/glider/internal/common"
	v1 "github.com/dmitrijs2005/glider/internal/contract/v1"
	"github.com/dmitrijs2005/glider/internal/cryptox"
	"github.com/dmitrijs2005/glider/internal/logging"
	"github.com/dmitrijs2005/glider/internal/server/metrics"
	"github.com/dmitrijs2005/glider/internal/server/session"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	idempotencyPrefix = "idempotency:v1:"
	inProgressMarker  = "__in_progress__"
	cacheTimeout      = 2 * time.Second
)

// idempotentMethods maps each create method to a constructor of its
// response message.
var idempotentMethods = map[string]func() any{
	v1.FullMethod(v1.MethodInsertPassword):   func() any { return new(v1.PasswordIDResponse) },
	v1.FullMethod(v1.MethodGeneratePassword): func() any { return new(v1.GeneratePasswordResponse) },
}

// Idempotency replays the stored response of a create call retried with
// the same idempotency-key. Stored responses are sealed with the caller's
// key since they may carry a generated secret.
type Idempotency struct {
	cache  *redis.Client
	ttl    time.Duration
	sealer *cryptox.Sealer
	logger logging.Logger
}

func NewIdempotency(cache *redis.Client, ttl time.Duration, sealer *cryptox.Sealer, logger logging.Logger) *Idempotency {
	return &Idempotency{
		cache:  cache,
		ttl:    ttl,
		sealer: sealer,
		logger: logger.With("module", "idempotency"),
	}
}

func cacheKey(userID, fullMethod, key string) string {
	return idempotencyPrefix + userID + ":" + path.Base(fullMethod) + ":" + key
}

// Interceptor must run after sessionInterceptor. m may be nil.
func (i *Idempotency) Interceptor(m *metrics.Collector) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		newResp, ok := idempotentMethods[info.FullMethod]
		if !ok {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		key := firstValue(md, common.IdempotencyKeyHeaderName)
		who, _ := session.FromContext(ctx)
		if key == "" || who.Empty() {
			return handler(ctx, req)
		}

		ck := cacheKey(who.UserID, info.FullMethod, key)
		aad := cryptox.AAD(who.UserID, ck, "idempotency")

		lookupCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
		defer cancel()

		cached, err := i.cache.Get(lookupCtx, ck).Bytes()
		if err == nil {
			if string(cached) == inProgressMarker {
				return nil, status.Error(codes.Aborted, "duplicate request currently processing")
			}
			resp := newResp()
			if err := i.sealer.OpenJSON(who.UserID, cached, aad, resp); err != nil {
				i.logger.Warn(ctx, "failed to decode stored idempotent response", "key", key, "error", err)
				return nil, status.Error(codes.Aborted, "duplicate request")
			}
			if m != nil {
				m.IdempotentReplay()
			}
			return resp, nil
		}
		if !errors.Is(err, redis.Nil) {
			i.logger.Error(ctx, "idempotency lookup failed", "key", key, "error", err)
			return nil, status.Error(codes.Unavailable, "idempotency store failure")
		}

		reserved, err := i.cache.SetNX(lookupCtx, ck, inProgressMarker, i.ttl).Result()
		if err != nil {
			i.logger.Error(ctx, "idempotency reservation failed", "key", key, "error", err)
			return nil, status.Error(codes.Unavailable, "idempotency reservation failure")
		}
		if !reserved {
			return nil, status.Error(codes.Aborted, "duplicate request currently processing")
		}

		resp, err := handler(ctx, req)
		if err != nil {
			i.release(ctx, ck)
			return nil, err
		}

		payload, err := i.sealer.SealJSON(who.UserID, resp, aad)
		if err != nil {
			i.logger.Error(ctx, "failed to encode idempotent response", "key", key, "error", err)
			i.release(ctx, ck)
			return resp, nil
		}

		persistCtx, persistCancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
		defer persistCancel()

		if err := i.cache.Set(persistCtx, ck, payload, i.ttl).Err(); err != nil {
			i.logger.Error(ctx, "failed to persist idempotent response", "key", key, "error", err)
			i.release(ctx, ck)
		}
		return resp, nil
	}
}

// release drops a reservation, best effort.
func (i *Idempotency) release(ctx context.Context, ck string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()
	i.cache.Del(cleanupCtx, ck)
}
