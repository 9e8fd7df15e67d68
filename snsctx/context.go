package snsctx

import (
	"context"
	"log/slog"
)

type ctxIndex int

const (
	ctxIndexVerbose ctxIndex = iota
	ctxIndexLogger
)

// IsVerbose reports whether frame-level dumps were requested for this call chain.
func IsVerbose(ctx context.Context) bool {
	val, ok := ctx.Value(ctxIndexVerbose).(bool)
	if !ok {
		return false
	}
	return val
}

func SetVerbose(ctx context.Context, value bool) context.Context {
	return context.WithValue(ctx, ctxIndexVerbose, value)
}

// Logger returns the logger attached with SetLogger or slog.Default.
func Logger(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxIndexLogger).(*slog.Logger)
	if !ok || l == nil {
		return slog.Default()
	}
	return l
}

func SetLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxIndexLogger, logger)
}
