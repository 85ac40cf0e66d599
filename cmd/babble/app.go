package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"babble/internal/config"
	"babble/internal/db"
	"babble/internal/logging"
	"babble/internal/service"
	"babble/internal/workspace"
)

// globalFlags are shared by every command.
type globalFlags struct {
	home      string
	config    string
	db        string
	logLevel  string
	logFormat string
}

// app is the wired runtime for one command invocation.
type app struct {
	layout *workspace.Layout
	cfg    config.Config
	logger *slog.Logger
	store  *db.Store
	svc    *service.Service
}

func (f *globalFlags) open(ctx context.Context, cmd *cobra.Command) (*app, error) {
	var (
		layout *workspace.Layout
		err    error
	)
	if f.home != "" {
		layout, err = workspace.EnsureAt(f.home)
	} else {
		layout, err = workspace.EnsureDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}

	cfgPath := layout.ConfigPath
	if f.config != "" {
		cfgPath = f.config
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if f.db != "" {
		cfg.DB.Path = f.db
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	cfg.Log.Output = cmd.ErrOrStderr()
	logger := logging.New(cfg.Log)

	store, err := db.Open(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	svc := service.FromConfig(store, cfg, logger)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Debug("opened store", "path", cfg.DB.Path, "config", cfgPath)
	return &app{layout: layout, cfg: cfg, logger: logger, store: store, svc: svc}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// withApp wraps a command body so it runs against an opened app.
func (f *globalFlags) withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := f.open(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}
