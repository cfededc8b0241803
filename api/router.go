// Package api 组装目录服务的 HTTP 路由。
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/api/handlers"
	"github.com/BaSui01/patternflow/catalog"
)

// RouterConfig 路由依赖
type RouterConfig struct {
	Registry *catalog.Registry
	DocsDir  string
	Checks   []handlers.HealthCheck
	Gatherer prometheus.Gatherer // nil 时使用默认注册表
	Version  string
	Logger   *zap.Logger
}

// NewRouter 构建完整的服务路由
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	patterns := handlers.NewPatternsHandler(cfg.Registry, cfg.DocsDir, logger)
	health := handlers.NewHealthHandler(logger)
	for _, c := range cfg.Checks {
		health.RegisterCheck(c)
	}
	reload := handlers.NewReloadHandler(cfg.Registry, logger)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/patterns", patterns.HandleList)
	mux.HandleFunc("GET /api/patterns/{id}", patterns.HandleGet)
	mux.HandleFunc("GET /api/patterns/{id}/readme", patterns.HandleReadme)
	mux.HandleFunc("GET /api/manifest", patterns.HandleManifest)
	mux.HandleFunc("GET /health", health.HandleHealth)
	mux.HandleFunc("GET /readyz", health.HandleReady)
	mux.HandleFunc("GET /version", health.HandleVersion(cfg.Version, "", ""))
	mux.HandleFunc("GET /ws/reload", reload.Handle)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mux
}
