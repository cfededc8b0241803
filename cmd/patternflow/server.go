package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/api"
	"github.com/BaSui01/patternflow/api/handlers"
	"github.com/BaSui01/patternflow/catalog"
	"github.com/BaSui01/patternflow/config"
	"github.com/BaSui01/patternflow/internal/server"
	"github.com/BaSui01/patternflow/ledger"
)

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg := loadConfig(fs, args)

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting PatternFlow",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 加载目录清单
	registry := catalog.NewRegistry(catalog.RegistryConfig{}, logger)
	manifest, err := catalog.LoadManifest(cfg.Catalog.ManifestPath)
	if err != nil {
		logger.Fatal("Failed to load manifest",
			zap.String("path", cfg.Catalog.ManifestPath),
			zap.Error(err),
		)
	}
	if err := registry.LoadManifest(manifest); err != nil {
		logger.Fatal("Manifest rejected", zap.Error(err))
	}

	// 监视清单变更，自动重载并推送 live-reload 事件
	if cfg.Catalog.WatchEnabled {
		watcher, err := catalog.NewWatcher(cfg.Catalog.ManifestPath, registry,
			catalog.WithPollInterval(cfg.Catalog.PollInterval),
			catalog.WithWatcherLogger(logger),
		)
		if err != nil {
			logger.Warn("Manifest watcher disabled", zap.Error(err))
		} else {
			if err := watcher.Start(ctx); err != nil {
				logger.Warn("Manifest watcher failed to start", zap.Error(err))
			} else {
				defer watcher.Stop()
			}
		}
	}

	// 决策台账
	led, store := openLedger(ctx, cfg.Ledger, logger)
	defer func() { _ = led.Close() }()

	if _, err := led.RecordDecision(ctx, ledger.Decision{
		Actor:     "patternflow",
		Title:     "catalog service started",
		Rationale: fmt.Sprintf("version=%s manifest=%s", Version, cfg.Catalog.ManifestPath),
		Tags:      []string{"lifecycle"},
	}); err != nil {
		logger.Warn("Failed to record startup decision", zap.Error(err))
	}

	// 就绪检查
	checks := []handlers.HealthCheck{
		handlers.NewPingCheck("manifest", func(context.Context) error {
			_, err := os.Stat(cfg.Catalog.ManifestPath)
			return err
		}),
		handlers.NewPingCheck("ledger", func(ctx context.Context) error {
			_, err := store.LastSeq(ctx)
			return err
		}),
	}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		checks = append(checks, handlers.NewPingCheck("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}

	router := api.NewRouter(api.RouterConfig{
		Registry: registry,
		DocsDir:  cfg.Catalog.DocsDir,
		Checks:   checks,
		Version:  Version,
		Logger:   logger,
	})

	mgr := server.NewManager(router, server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	if err := mgr.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	mgr.WaitForShutdown()
	logger.Info("PatternFlow stopped")
}

// openLedger 根据配置打开决策台账
func openLedger(ctx context.Context, cfg config.LedgerConfig, logger *zap.Logger) (*ledger.Ledger, ledger.Store) {
	var store ledger.Store
	switch cfg.Store {
	case "sqlite":
		s, err := ledger.OpenSQLiteStore(cfg.Path)
		if err != nil {
			logger.Fatal("Failed to open ledger store",
				zap.String("path", cfg.Path),
				zap.Error(err),
			)
		}
		store = s
	default:
		store = ledger.NewMemoryStore()
	}

	led, err := ledger.New(ctx, store, logger)
	if err != nil {
		logger.Fatal("Failed to initialize ledger", zap.Error(err))
	}
	return led, store
}
