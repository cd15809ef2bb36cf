// Package logger provides the process-wide structured logger built on log/slog.
//
// Handlers pull a request-scoped logger out of the context so every line is
// tagged with the request id set by the Logger middleware:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("product reserved", "product_id", id)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/shashiranjanraj/rocketcart/config"
)

var (
	L *slog.Logger

	mu    sync.Mutex
	sinks []io.Closer
)

func init() {
	L = slog.New(baseHandler(os.Stdout))
	slog.SetDefault(L)
}

func baseHandler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(config.LogLevel())}
	if config.IsProduction() {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EnableMongo tees every record into the logs collection of the given
// MongoDB database. Call Close on shutdown to flush the queue.
func EnableMongo(uri, db string) error {
	h, err := NewMongoHandler(uri, db, "logs")
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	L = slog.New(NewMultiHandler(L.Handler(), h))
	slog.SetDefault(L)
	sinks = append(sinks, h)
	return nil
}

// Close flushes and releases any extra sinks.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	for _, s := range sinks {
		_ = s.Close()
	}
	sinks = nil
}

type ctxKey struct{}

// WithCtx returns the request logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx. Used by the Logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }

// LevelFor picks the access-log level for an HTTP status.
func LevelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
