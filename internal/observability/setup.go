package observability

import (
	"context"
	"errors"
	"fmt"
)

// Setup starts trace, metric and log export when enabled. Disabled telemetry
// leaves the global no-op providers in place and returns a no-op shutdown.
func Setup(ctx context.Context, enabled bool, serviceName string) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !enabled {
		return noop, nil
	}

	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	steps := []struct {
		name string
		init func(context.Context, string) (func(context.Context) error, error)
	}{
		{"tracing", InitTracing},
		{"metrics", InitMetrics},
		{"logging", InitLogging},
	}
	for _, step := range steps {
		fn, err := step.init(ctx, serviceName)
		if err != nil {
			_ = shutdown(ctx)
			return noop, fmt.Errorf("init %s: %w", step.name, err)
		}
		shutdowns = append(shutdowns, fn)
	}

	return shutdown, nil
}
