// =============================================================================
// 📦 PatternFlow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:  DefaultServerConfig(),
		Catalog: DefaultCatalogConfig(),
		LLM:     DefaultLLMConfig(),
		Codegen: DefaultCodegenConfig(),
		Ledger:  DefaultLedgerConfig(),
		Redis:   DefaultRedisConfig(),
		Log:     DefaultLogConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// DefaultCatalogConfig 返回默认目录配置
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		ManifestPath: "patterns/index.json",
		DocsDir:      "patterns",
		WatchEnabled: true,
		PollInterval: 2 * time.Second,
	}
}

// DefaultLLMConfig 返回默认 LLM 配置
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:   "anthropic",
		APIKey:     "",
		BaseURL:    "",
		Model:      "claude-sonnet-4-20250514",
		Timeout:    2 * time.Minute,
		MaxRetries: 3,
	}
}

// DefaultCodegenConfig 返回默认生成管线配置
func DefaultCodegenConfig() CodegenConfig {
	return CodegenConfig{
		OutputDir:       "patterns",
		Concurrency:     4,
		RequestsPerSec:  2,
		MaxPromptTokens: 8000,
		CacheTTL:        24 * time.Hour,
	}
}

// DefaultLedgerConfig 返回默认台账配置
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		Store: "sqlite",
		Path:  "patternflow.db",
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  false,
		Addr:     "localhost:6379",
		Password: "",
		DB:       0,
		PoolSize: 10,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:        "info",
		Format:       "json",
		OutputPaths:  []string{"stdout"},
		EnableCaller: true,
	}
}
