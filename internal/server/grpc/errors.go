package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a service error onto a gRPC status with a caller-safe
// message. Unexpected errors are logged and reported as Internal.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrDuplicateIdentity):
		return status.Error(codes.AlreadyExists, common.ErrDuplicateIdentity.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, common.ErrInvalidCredentials.Error())
	case errors.Is(err, common.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, common.ErrUnauthenticated.Error())
	case errors.Is(err, common.ErrAccountDisabled):
		return status.Error(codes.PermissionDenied, common.ErrAccountDisabled.Error())
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, common.ErrForbidden.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, common.ErrorNotFound.Error())
	case errors.Is(err, common.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, common.ErrRateLimited.Error())
	case errors.Is(err, common.ErrTransientStore):
		return status.Error(codes.Unavailable, common.ErrTransientStore.Error())
	case errors.Is(err, common.ErrNotConfigured):
		return status.Error(codes.Unimplemented, common.ErrNotConfigured.Error())
	default:
		s.logger.Error(ctx, "rpc failed", "error", err)
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}
