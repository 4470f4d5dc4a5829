package observability

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logger is the process-wide logger. It discards everything until one of the
// Init functions replaces it.
var Logger = zap.NewNop()

// InitLogger installs a production JSON logger writing to stderr.
func InitLogger() error {
	l, err := zap.NewProduction()
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// InitFileLogger installs a production JSON logger writing to path. The
// terminal UI uses it because stdout and stderr belong to the screen.
func InitFileLogger(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir log dir: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build file logger: %w", err)
	}
	Logger = l
	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns a child logger enriched with trace_id and span_id
// from the active span in ctx.
//
// ctx is also attached as a zap.Any("context", ctx) field: the otelzap core
// uses any context-valued field as the context for Emit, so exported OTLP
// log records carry the native trace and span ids. The string fields keep
// stdout JSON greppable.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return Logger
	}

	return Logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
