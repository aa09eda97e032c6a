// Package requestctx carries per-request values (logger, trace, caller identity) through context.
package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type (
	loggerKey struct{}
	traceKey  struct{}
	actorKey  struct{}
)

var noopLogger = zap.NewNop()

// TraceInfo is the Cloud Trace view of the active span.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

// Actor identifies who is behind a request: a storefront session, a signed-in admin, or both.
type Actor struct {
	SessionID string
	Admin     string
}

func value[T any](ctx context.Context, key any) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(orBackground(ctx), loggerKey{}, logger)
}

// Logger never returns nil.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := value[*zap.Logger](ctx, loggerKey{}); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger is the logger Logger falls back to; compare against it to detect a missing request logger.
func NoopLogger() *zap.Logger { return noopLogger }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	return context.WithValue(orBackground(ctx), traceKey{}, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	return value[TraceInfo](ctx, traceKey{})
}

func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// WithActor merges actor into the identity already on ctx, so the request logger installed further out
// sees the session and admin resolved by inner middleware. Empty fields never clear a known value.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if current, ok := value[*Actor](ctx, actorKey{}); ok && current != nil {
		if actor.SessionID != "" {
			current.SessionID = actor.SessionID
		}
		if actor.Admin != "" {
			current.Admin = actor.Admin
		}
		return ctx
	}
	holder := actor
	return context.WithValue(orBackground(ctx), actorKey{}, &holder)
}

func ActorFrom(ctx context.Context) Actor {
	if actor, ok := value[*Actor](ctx, actorKey{}); ok && actor != nil {
		return *actor
	}
	return Actor{}
}
