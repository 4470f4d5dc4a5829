package calculator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/engine"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
)

var tracer = otel.Tracer("calculator")

// Add handles POST /calculator/add
func Add(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, engine.OpAdd)
}

// Subtract handles POST /calculator/subtract
func Subtract(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, engine.OpSubtract)
}

// Multiply handles POST /calculator/multiply
func Multiply(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, engine.OpMultiply)
}

// Divide handles POST /calculator/divide
func Divide(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, engine.OpDivide)
}

func elapsedMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

// handleBinaryOp applies op to the two operands in the body using the same
// arithmetic and display rules as the keypad engine.
func handleBinaryOp(w http.ResponseWriter, r *http.Request, op engine.Operator) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	opName := op.String()

	ctx, span := tracer.Start(ctx, "calculator."+opName,
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req CalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.Float64("calculator.operand.a", req.A),
		attribute.Float64("calculator.operand.b", req.B),
	)

	start := time.Now()
	result, err := engine.ApplyValues(op, req.A, req.B)
	elapsed := elapsedMillis(start)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusBadRequest, w)
		return
	}
	display := engine.FormatValue(result)

	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	resultGauge.Record(ctx, result, attrs)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", result),
		attribute.String("display", display),
	))
	span.SetAttributes(attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator operation completed",
		zap.String("operation", opName),
		zap.Float64("a", req.A),
		zap.Float64("b", req.B),
		zap.Float64("result", result),
		zap.String("display", display),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, CalcResponse{
		Operation: opName,
		A:         req.A,
		B:         req.B,
		Result:    result,
		Display:   display,
	})
}

// Chain handles POST /calculator/chain. Steps are applied strictly left to
// right on a running total, each under its own child span.
func Chain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.chain",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	var req ChainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "chain", "invalid request body", err, http.StatusBadRequest, w)
		return
	}
	if len(req.Steps) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "chain", "no steps provided", errors.New("steps array is empty"), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.Float64("chain.initial", req.Initial),
		attribute.Int("chain.steps_count", len(req.Steps)),
	)

	running := req.Initial
	results := make([]ChainResult, 0, len(req.Steps))

	for i, step := range req.Steps {
		_, stepSpan := tracer.Start(ctx, fmt.Sprintf("calculator.chain.step.%d", i),
			trace.WithAttributes(
				attribute.Int("chain.step.index", i),
				attribute.String("chain.step.operation", step.Op),
				attribute.Float64("chain.step.input", running),
				attribute.Float64("chain.step.value", step.Value),
			),
		)

		stepStart := time.Now()
		op, err := engine.ParseOperator(step.Op)
		var next float64
		if err == nil {
			next, err = engine.ApplyValues(op, running, step.Value)
		}
		stepElapsed := elapsedMillis(stepStart)

		if err != nil {
			err = fmt.Errorf("step %d: %w", i, err)
			stepSpan.RecordError(err)
			stepSpan.SetStatus(codes.Error, err.Error())
			stepSpan.End()

			span.SetAttributes(attribute.Int("chain.failed_step", i))
			observability.RecordError(ctx, span, logger, errorCounter, "chain", err.Error(), err, http.StatusBadRequest, w)
			return
		}

		attrs := metric.WithAttributes(attribute.String("operation", op.String()))
		opsCounter.Add(ctx, 1, attrs)
		opsHistogram.Record(ctx, stepElapsed, attrs)

		stepSpan.SetAttributes(attribute.Float64("chain.step.result", next))
		stepSpan.SetStatus(codes.Ok, "")
		stepSpan.End()

		logger.Debug("chain step completed",
			zap.Int("step", i),
			zap.String("operation", op.String()),
			zap.Float64("input", running),
			zap.Float64("value", step.Value),
			zap.Float64("result", next),
		)

		running = next
		results = append(results, ChainResult{Op: op.String(), Value: step.Value, Result: running})
	}

	resultGauge.Record(ctx, running, metric.WithAttributes(attribute.String("operation", "chain")))
	span.SetAttributes(attribute.Float64("chain.result", running))
	span.SetStatus(codes.Ok, "")

	logger.Info("chained calculation completed",
		zap.Float64("initial", req.Initial),
		zap.Float64("result", running),
		zap.Int("steps", len(req.Steps)),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, ChainResponse{
		Initial: req.Initial,
		Steps:   results,
		Result:  running,
		Display: engine.FormatValue(running),
	})
}
