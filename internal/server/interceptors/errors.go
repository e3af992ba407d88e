package interceptors

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"promanage/backend/internal/platform/apperr"
)

// ErrorsUnary converts handler errors to gRPC statuses. Classified errors keep
// their public message; anything else is logged and returned as a bare Internal.
// It must be the outermost interceptor so errors from the others are mapped too.
func ErrorsUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return resp, ToStatus(ctx, info.FullMethod, err)
	}
}

// ToStatus maps err to a status error. Errors that already carry a status pass through.
func ToStatus(ctx context.Context, method string, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		slog.ErrorContext(ctx, "unhandled error", "method", method, "error", err)
	}
	return status.Error(Code(kind), apperr.PublicMessage(err))
}

// Code maps an error kind to a gRPC code.
func Code(k apperr.Kind) codes.Code {
	switch k {
	case apperr.KindInvalid:
		return codes.InvalidArgument
	case apperr.KindUnauthorized:
		return codes.Unauthenticated
	case apperr.KindForbidden:
		return codes.PermissionDenied
	case apperr.KindNotFound:
		return codes.NotFound
	case apperr.KindConflict:
		return codes.AlreadyExists
	case apperr.KindRateLimited:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}
