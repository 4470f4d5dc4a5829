package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/server"
)

func main() {

	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics and log export
	telemetryShutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		observability.Logger.Fatal("telemetry setup failed", zap.Error(err))
	}
	defer telemetryShutdown(ctx)

	store, err := openTape(cfg)
	if err != nil {
		observability.Logger.Fatal("tape setup failed", zap.Error(err))
	}

	sessions := calculator.NewSessionHandler(calculator.NewSessionStore(cfg.Server.SessionTTL), nil)
	if store != nil {
		defer store.Close()
		sessions.Tape = store
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewRouter(sessions),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started", zap.String("addr", cfg.Server.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv)
}

func waitForShutdown(srv *http.Server) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("shutdown failed", zap.Error(err))
	}
}
