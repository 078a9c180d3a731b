package grpc

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/cryptox"
	"github.com/dmitrijs2005/glider/internal/logging"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/dmitrijs2005/glider/internal/server/session"
	"github.com/stretchr/testify/require"
)

// fakeResolver accepts a single token.
type fakeResolver struct {
	token string
	who   session.Identity
	err   error

	lastInfo models.DeviceInfo
	calls    int
}

func (f *fakeResolver) Resolve(ctx context.Context, token string, info models.DeviceInfo) (session.Identity, error) {
	f.calls++
	f.lastInfo = info
	if f.err != nil {
		return session.Identity{}, f.err
	}
	if token != f.token {
		return session.Identity{}, fmt.Errorf("%w: unknown token", common.ErrUnauthenticated)
	}
	return f.who, nil
}

func newTestServer(r SessionResolver, opts ...Option) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Discard(), nil, nil, nil, r, opts...)
}

func testSealer(t *testing.T) *cryptox.Sealer {
	t.Helper()
	s, err := cryptox.NewSealer(bytes.Repeat([]byte{7}, cryptox.KeySize))
	require.NoError(t, err)
	return s
}
