package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
)

func TestToStatus_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"nil", nil, codes.OK},
		{"validation", fmt.Errorf("wrap: %w", common.ErrValidation), codes.InvalidArgument},
		{"config", common.ErrInvalidConfiguration, codes.FailedPrecondition},
		{"not found", fmt.Errorf("password p1: %w", common.ErrNotFound), codes.NotFound},
		{"forbidden", common.ErrForbidden, codes.PermissionDenied},
		{"unauthenticated", common.ErrUnauthenticated, codes.Unauthenticated},
		{"expired", fmt.Errorf("%w: %w", common.ErrUnauthenticated, common.ErrTokenExpired), codes.Unauthenticated},
		{"storage", fmt.Errorf("%w: db down", common.ErrStorage), codes.Unavailable},
		{"canceled", context.Canceled, codes.Canceled},
		{"unknown", errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, toStatus(tt.err).Code())
		})
	}
}

func TestToStatus_FieldViolation(t *testing.T) {
	st := toStatus(common.NewFieldError("tail", "too long"))
	require.Equal(t, codes.InvalidArgument, st.Code())

	require.Len(t, st.Details(), 1)
	br, ok := st.Details()[0].(*errdetails.BadRequest)
	require.True(t, ok)
	require.Len(t, br.GetFieldViolations(), 1)
	assert.Equal(t, "tail", br.GetFieldViolations()[0].GetField())
	assert.Equal(t, "too long", br.GetFieldViolations()[0].GetDescription())
}

func TestToStatus_StorageHidesCause(t *testing.T) {
	st := toStatus(fmt.Errorf("%w: insert: pq: connection to 10.0.0.5 refused", common.ErrStorage))
	assert.Equal(t, common.ErrStorage.Error(), st.Message())

	require.Len(t, st.Details(), 1)
	ri, ok := st.Details()[0].(*errdetails.RetryInfo)
	require.True(t, ok)
	assert.Equal(t, storageRetryDelay, ri.GetRetryDelay().AsDuration())

	assert.Equal(t, "internal error", toStatus(errors.New("secret detail")).Message())
}

func TestToStatus_ExpiredTokenMessage(t *testing.T) {
	st := toStatus(fmt.Errorf("%w: %w", common.ErrUnauthenticated, common.ErrTokenExpired))
	assert.Equal(t, common.ErrTokenExpired.Error(), st.Message())
}
