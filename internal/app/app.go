package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/skillcoder/reconfigurer/internal/adapters/outbound/backupdir"
	"github.com/skillcoder/reconfigurer/internal/adapters/outbound/fsstore"
	k8sadapter "github.com/skillcoder/reconfigurer/internal/adapters/outbound/k8s"
	"github.com/skillcoder/reconfigurer/internal/config"
	"github.com/skillcoder/reconfigurer/internal/httpserver"
	"github.com/skillcoder/reconfigurer/internal/infra/logging"
	"github.com/skillcoder/reconfigurer/internal/infra/shutdown"
	"github.com/skillcoder/reconfigurer/internal/logic/reconfig"
)

type App struct {
	logger  *slog.Logger
	cfg     *config.Config
	engine  *reconfig.Service
	applier reconfig.Applier
}

// New creates a new application instance with all dependencies wired.
func New(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel)

	kubeConfig, err := clientcmd.BuildConfigFromFlags(
		cfg.KubeMaster,
		cfg.KubeConfig,
	)
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(kubeConfig)
	if err != nil {
		return nil, fmt.Errorf("create clientset: %w", err)
	}

	applier := k8sadapter.New(logger, clientset, cfg.Namespace)

	entries := make([]fsstore.Entry, 0, len(cfg.Services))
	for _, svc := range cfg.Services {
		entries = append(entries, fsstore.Entry{
			Name:      svc.Name,
			Path:      svc.Manifest,
			Container: svc.Container,
		})
	}

	store := fsstore.New(logger, entries)

	backups, err := backupdir.New(logger, cfg.BackupDir)
	if err != nil {
		return nil, fmt.Errorf("open backup store: %w", err)
	}

	engine := reconfig.New(logger, store, backups, applier)

	return &App{
		logger:  logger,
		cfg:     cfg,
		engine:  engine,
		applier: applier,
	}, nil
}

// Run executes one reconfiguration run.
func (a *App) Run(ctx context.Context, req reconfig.PatchRequest) (*reconfig.RunReport, error) {
	return a.engine.Run(ctx, req)
}

// Rollback restores a snapshot and applies it.
func (a *App) Rollback(ctx context.Context, backupID string) error {
	return a.engine.Rollback(ctx, backupID)
}

// Serve exposes the engine over HTTP and blocks until a termination signal.
func (a *App) Serve(originCtx context.Context, signals <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(originCtx)
	defer cancel()

	handler := shutdown.New(a.logger, signals)
	go handler.HandleSignals(ctx, cancel)

	server := httpserver.New(a.logger, a.engine, a.applier, a.cfg.HTTPPort)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}

	a.logger.InfoContext(ctx, "serving reconfiguration api", "port", a.cfg.HTTPPort)

	<-ctx.Done()

	return shutdown.GracefulShutdown(ctx, a.logger, []shutdown.Shutdowner{server})
}
