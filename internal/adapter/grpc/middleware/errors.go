package middleware

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// ErrorMapping converts errors returned by handlers into gRPC statuses.
// Application errors report their own status, even when wrapped; anything
// untyped becomes codes.Internal without leaking its message.
func ErrorMapping(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return resp, toStatusError(ctx, log, info.FullMethod, err)
	}
}

func toStatusError(ctx context.Context, log *zap.Logger, method string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	var internal *apperrors.InternalError
	if errors.As(err, &internal) {
		logger.WithContext(ctx, log).Error("grpc internal error", zap.String("method", method), zap.Error(err))
	}

	var s apperrors.GRPCStatuser
	if errors.As(err, &s) {
		return s.GRPCStatus().Err()
	}

	logger.WithContext(ctx, log).Error("grpc untyped error", zap.String("method", method), zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
