// Package supervisor provides the minimal context-scoped logging and
// goroutine-lifecycle helpers the rest of this node expects from a
// supervision tree, without the full actor-restart machinery a production
// gossip-connected guardian would need - that tree lives outside this core's
// scope.
package supervisor

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

// WithLogger returns a context carrying logger, retrievable with Logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger attached to ctx via WithLogger, or a no-op
// logger if none was attached.
func Logger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// Runnable is a long-lived task runnable under Run.
type Runnable func(ctx context.Context) error

// Run starts r in its own goroutine, logging and discarding its error on
// exit. It returns immediately; callers that need to wait for
// completion should use their own sync.WaitGroup around the runnables.
func Run(ctx context.Context, name string, r Runnable) {
	go func() {
		if err := r(ctx); err != nil {
			Logger(ctx).Error("runnable exited with error", zap.String("name", name), zap.Error(err))
		}
	}()
}
