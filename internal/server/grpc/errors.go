package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/glider/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

// storageRetryDelay is the back-off suggested to clients on storage failures.
const storageRetryDelay = time.Second

// toStatus maps a service error to a gRPC status. Storage and unexpected
// errors are reported without their cause.
func toStatus(err error) *status.Status {
	var fe *common.FieldError
	switch {
	case err == nil:
		return status.New(codes.OK, "")
	case errors.As(err, &fe):
		st := status.New(codes.InvalidArgument, err.Error())
		if d, derr := st.WithDetails(&errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{{Field: fe.Field, Description: fe.Reason}},
		}); derr == nil {
			return d
		}
		return st
	case errors.Is(err, common.ErrValidation):
		return status.New(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrInvalidConfiguration):
		return status.New(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return status.New(codes.NotFound, common.ErrNotFound.Error())
	case errors.Is(err, common.ErrForbidden):
		return status.New(codes.PermissionDenied, common.ErrForbidden.Error())
	case errors.Is(err, common.ErrTokenExpired):
		return status.New(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrUnauthenticated):
		return status.New(codes.Unauthenticated, common.ErrUnauthenticated.Error())
	case errors.Is(err, common.ErrStorage):
		st := status.New(codes.Unavailable, common.ErrStorage.Error())
		if d, derr := st.WithDetails(&errdetails.RetryInfo{RetryDelay: durationpb.New(storageRetryDelay)}); derr == nil {
			return d
		}
		return st
	case errors.Is(err, context.Canceled):
		return status.New(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, err.Error())
	default:
		return status.New(codes.Internal, "internal error")
	}
}

// fail logs err when it is not the caller's fault and returns its status.
func (h *handler) fail(ctx context.Context, method string, err error) error {
	st := toStatus(err)
	switch st.Code() {
	case codes.Internal, codes.Unavailable:
		h.logger.Error(ctx, "rpc failed", "method", method, "error", err)
	default:
		h.logger.Debug(ctx, "rpc rejected", "method", method, "code", st.Code().String(), "error", err)
	}
	return st.Err()
}
