package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/tape"
)

// initTelemetry starts OTLP export when enabled and re-creates the
// calculator instruments against the installed meter provider.
func initTelemetry(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	shutdown, err := observability.Setup(ctx, cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}

// openTape opens the tape store, or returns nil when the tape is disabled.
func openTape(cfg config.Config) (*tape.Store, error) {
	if !cfg.Tape.Enabled {
		observability.Logger.Info("tape disabled")
		return nil, nil
	}
	store, err := tape.OpenStore(cfg.Tape.Path)
	if err != nil {
		return nil, fmt.Errorf("open tape %s: %w", cfg.Tape.Path, err)
	}
	observability.Logger.Info("tape opened", zap.String("path", cfg.Tape.Path))
	return store, nil
}
