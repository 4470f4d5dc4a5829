package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/tape"
	"go-chi-calculator/internal/theme"
	"go-chi-calculator/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "calc:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := observability.InitFileLogger(cfg.Log.Path); err != nil {
		return err
	}
	defer observability.SyncLogger()

	name, err := theme.Parse(cfg.UI.Theme)
	if err != nil {
		observability.Logger.Warn("falling back to light theme", zap.Error(err))
		name = theme.Light
	}

	opts := tui.Options{
		Theme:     name,
		SessionID: uuid.NewString(),
		SaveTheme: func(n theme.Name) error {
			cfg.UI.Theme = string(n)
			return config.Save(cfg)
		},
	}

	if cfg.Tape.Enabled {
		store, err := tape.OpenStore(cfg.Tape.Path)
		if err != nil {
			return fmt.Errorf("open tape %s: %w", cfg.Tape.Path, err)
		}
		defer store.Close()
		opts.Tape = store
	}

	observability.Logger.Info("calculator started", zap.String("session_id", opts.SessionID))

	if _, err := tea.NewProgram(tui.New(opts), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
