package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/catalog"
)

// =============================================================================
// 🔄 目录变更推送（live reload）
// =============================================================================

// reloadMessage 推送给浏览端的事件
const reloadMessage = `{"event":"catalog_reload"}`

// ReloadHandler 通过 websocket 推送目录变更通知。
// 清单文件被监视器重载后，所有连接的客户端收到一条 reload 事件。
type ReloadHandler struct {
	registry *catalog.Registry
	logger   *zap.Logger

	// writeTimeout 限制单次推送的阻塞时间
	writeTimeout time.Duration
}

// NewReloadHandler 创建 live-reload 处理器
func NewReloadHandler(registry *catalog.Registry, logger *zap.Logger) *ReloadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReloadHandler{
		registry:     registry,
		logger:       logger.With(zap.String("handler", "reload")),
		writeTimeout: 5 * time.Second,
	}
}

// Handle 处理 GET /ws/reload
func (h *ReloadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	notifications := h.registry.Subscribe()
	defer h.registry.Unsubscribe(notifications)

	ctx := r.Context()
	h.logger.Debug("reload subscriber connected", zap.String("remote", r.RemoteAddr))

	for {
		select {
		case <-ctx.Done():
			return
		case <-notifications:
			writeCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, []byte(reloadMessage))
			cancel()
			if err != nil {
				h.logger.Debug("reload subscriber gone", zap.Error(err))
				return
			}
		}
	}
}
