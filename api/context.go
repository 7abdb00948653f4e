package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"
)

type ctxKey string

const (
	ctxRequestIdKey ctxKey = "REQUEST_ID"
	ctxLoggerKey    ctxKey = "LOGGER"
	ctxJWTKey       ctxKey = "JWT"
)

func ctxWithRequestId(ctx context.Context, requestId uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxRequestIdKey, requestId)
}

func requestIdFromCtx(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ctxRequestIdKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func ctxWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey, logger)
}

func loggerFromCtx(ctx context.Context) (*slog.Logger, bool) {
	logger, ok := ctx.Value(ctxLoggerKey).(*slog.Logger)
	return logger, ok
}

func ctxWithJWT(ctx context.Context, jwt *idtoken.Payload) context.Context {
	return context.WithValue(ctx, ctxJWTKey, jwt)
}

func jwtFromCtx(ctx context.Context) *idtoken.Payload {
	if jwt, ok := ctx.Value(ctxJWTKey).(*idtoken.Payload); ok {
		return jwt
	}
	return nil
}
