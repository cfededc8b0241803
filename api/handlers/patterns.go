package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/catalog"
	"github.com/BaSui01/patternflow/types"
)

// =============================================================================
// 📚 模式目录 Handler
// =============================================================================

// PatternsHandler 提供目录浏览端点
type PatternsHandler struct {
	registry *catalog.Registry
	docsDir  string
	logger   *zap.Logger
}

// NewPatternsHandler 创建目录处理器。docsDir 是生成文档的根目录。
func NewPatternsHandler(registry *catalog.Registry, docsDir string, logger *zap.Logger) *PatternsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatternsHandler{
		registry: registry,
		docsDir:  docsDir,
		logger:   logger.With(zap.String("handler", "patterns")),
	}
}

// HandleList 处理 GET /api/patterns，支持 ?q= 关键字过滤
func (h *PatternsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var patterns []types.Pattern
	if query == "" {
		patterns = h.registry.List()
	} else {
		patterns = h.registry.Search(query)
	}

	WriteSuccess(w, map[string]any{
		"total":    len(patterns),
		"patterns": patterns,
	})
}

// HandleGet 处理 GET /api/patterns/{id}
func (h *PatternsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, ok := h.registry.Get(id)
	if !ok {
		WriteError(w, types.NewError(types.ErrPatternNotFound, "unknown pattern: "+id), h.logger)
		return
	}
	WriteSuccess(w, p)
}

// HandleReadme 处理 GET /api/patterns/{id}/readme，
// 返回生成的 README 原文（text/markdown）
func (h *PatternsHandler) HandleReadme(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, ok := h.registry.Get(id)
	if !ok {
		WriteError(w, types.NewError(types.ErrPatternNotFound, "unknown pattern: "+id), h.logger)
		return
	}

	rel := p.Docs.Readme
	if rel == "" {
		rel = filepath.Join(p.ID, "README.md")
	}
	// 防止路径穿越
	rel = filepath.Clean(rel)
	if strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "invalid doc path"), h.logger)
		return
	}

	content, err := os.ReadFile(filepath.Join(h.docsDir, rel))
	if err != nil {
		if os.IsNotExist(err) {
			WriteError(w, types.NewError(types.ErrPatternNotFound, "readme not generated for "+id), h.logger)
			return
		}
		WriteError(w, types.NewError(types.ErrStoreFailure, "read readme").WithCause(err), h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// HandleManifest 处理 GET /api/manifest，返回完整目录快照
func (h *PatternsHandler) HandleManifest(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, h.registry.Snapshot())
}
