// Package logging defines the structured logger shared by the daemon, the
// execution host and the ledger engine. The concrete implementation wraps
// slog; components depend only on the interface.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// alternating key and value pairs:
//
//	log.Info(ctx, "unit committed", "unit", id, "accounts", n)
type Logger interface {
	// Debug logs per-operation trace detail.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
