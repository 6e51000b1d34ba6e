package common

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// IntoLogger puts a logger into the context.
func IntoLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFrom returns the context logger, or fallback, or slog.Default().
func LoggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if v := ctx.Value(loggerKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}

// RedactToken hides a credential in log output, keeping a short prefix for correlation.
func RedactToken(tok string) string {
	if tok == "" {
		return ""
	}
	if len(tok) <= 8 {
		return "[REDACTED_TOKEN]"
	}
	return tok[:4] + "…[REDACTED_TOKEN]"
}
