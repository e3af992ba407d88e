package interceptors

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"promanage/backend/internal/platform/apperr"
	"promanage/backend/internal/platform/httpx"
)

// LoggingUnary logs one line per RPC with its status code and duration.
// skipMethods (health probes) are not logged.
func LoggingUnary(skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if skipMethods[info.FullMethod] {
			return resp, err
		}
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "grpc request",
			"component", "grpc",
			"method", info.FullMethod,
			"code", codeOf(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", httpx.ClientIPFromContext(ctx))
		return resp, err
	}
}

func codeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}
	return Code(apperr.KindOf(err))
}
