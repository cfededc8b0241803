package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/catalog"
	"github.com/BaSui01/patternflow/codegen"
	"github.com/BaSui01/patternflow/config"
	"github.com/BaSui01/patternflow/llm"
	"github.com/BaSui01/patternflow/llm/tokenizer"
)

// =============================================================================
// ⚙️ generate 命令
// =============================================================================

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	force := fs.Bool("force", false, "Regenerate documents even when up to date")
	timeout := fs.Duration("timeout", 30*time.Minute, "Overall run timeout")
	cfg := loadConfig(fs, args)

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	manifest, err := catalog.LoadManifest(cfg.Catalog.ManifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load manifest: %v\n", err)
		os.Exit(1)
	}

	tokenizer.RegisterDefaultTokenizers()

	provider := buildProvider(cfg.LLM, logger)
	cache := buildCache(cfg, logger)
	metrics := codegen.NewMetrics(prometheus.DefaultRegisterer)

	pipeline := codegen.NewPipeline(provider, cache, metrics, codegen.PipelineConfig{
		OutputDir:       cfg.Codegen.OutputDir,
		Model:           cfg.LLM.Model,
		Concurrency:     cfg.Codegen.Concurrency,
		RequestsPerSec:  cfg.Codegen.RequestsPerSec,
		Burst:           cfg.Codegen.Concurrency,
		MaxPromptTokens: cfg.Codegen.MaxPromptTokens,
		Force:           *force || cfg.Codegen.Force,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := pipeline.Run(ctx, manifest.Patterns)
	fmt.Printf("Run %s: generated=%d skipped=%d cache_hits=%d failed=%d\n",
		report.RunID, report.Generated, report.Skipped, report.CacheHits, report.Failed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generation finished with errors: %v\n", err)
		os.Exit(1)
	}
}

// buildProvider 根据配置选择内容生成后端
func buildProvider(cfg config.LLMConfig, logger *zap.Logger) llm.Provider {
	switch cfg.Provider {
	case "static":
		// 离线模式：不访问任何上游，回显提示词，便于演示和冒烟测试
		return &llm.StaticProvider{}
	default:
		return llm.NewAnthropicProvider(llm.AnthropicConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, logger)
	}
}

// buildCache 选择响应缓存：启用 Redis 时跨运行共享，否则进程内缓存
func buildCache(cfg *config.Config, logger *zap.Logger) codegen.ResponseCache {
	if !cfg.Redis.Enabled {
		return codegen.NewMemoryCache()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	logger.Info("Using Redis response cache", zap.String("addr", cfg.Redis.Addr))
	return codegen.NewRedisCache(rdb, cfg.Codegen.CacheTTL)
}
