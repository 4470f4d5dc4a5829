package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/handlers"
)

// RecordError centralises error handling across all domains: records the error
// on the span, increments the provided error counter, logs with trace context,
// and writes a JSON error HTTP response.
func RecordError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, opName, msg string, err error, status int, w http.ResponseWriter) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)

	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", opName)))
	}

	requestID := RequestIDFromContext(ctx)
	logger.Error(msg,
		zap.String("operation", opName),
		zap.Error(err),
		zap.String("request_id", requestID),
	)

	handlers.WriteError(w, status, msg, requestID)
}
