// 清单文件变更监听器。
//
// 基于轮询与去抖机制触发清单重载回调，避免平台相关的 inotify 依赖。
package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileEvent represents a manifest file change event.
type FileEvent struct {
	// Path 是改变的文件路径
	Path string `json:"path"`

	// Op 是操作类型
	Op FileOp `json:"op"`

	// Timestamp 是事件发生的时间
	Timestamp time.Time `json:"timestamp"`
}

// FileOp represents file operation types.
type FileOp int

const (
	// FileOpCreate 表示文件已创建
	FileOpCreate FileOp = iota
	// FileOpWrite 指示文件已被修改
	FileOpWrite
	// FileOpRemove 表示文件已被删除
	FileOpRemove
)

// String returns the string representation of FileOp.
func (op FileOp) String() string {
	switch op {
	case FileOpCreate:
		return "CREATE"
	case FileOpWrite:
		return "WRITE"
	case FileOpRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// Watcher watches the manifest file and reloads the registry on change.
type Watcher struct {
	mu sync.Mutex

	// 配置
	path          string
	registry      *Registry
	pollInterval  time.Duration
	debounceDelay time.Duration

	// 状态
	running     bool
	stopChan    chan struct{}
	lastModTime time.Time
	lastEvent   time.Time

	// 回调
	callbacks []func(FileEvent)

	logger *zap.Logger
}

// WatcherOption configures the Watcher.
type WatcherOption func(*Watcher)

// WithPollInterval sets the polling interval.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithDebounceDelay sets the debounce delay for file events.
func WithDebounceDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounceDelay = d }
}

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = logger.With(zap.String("component", "catalog_watcher")) }
}

// NewWatcher creates a manifest watcher bound to a registry.
func NewWatcher(path string, registry *Registry, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:          path,
		registry:      registry,
		pollInterval:  time.Second,
		debounceDelay: 100 * time.Millisecond,
		logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(w)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			w.logger.Warn("manifest does not exist yet, will watch for creation",
				zap.String("path", path))
		} else {
			return nil, fmt.Errorf("failed to stat manifest %s: %w", path, err)
		}
	}

	return w, nil
}

// OnChange registers a callback for manifest change events.
func (w *Watcher) OnChange(callback func(FileEvent)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start begins watching (non-blocking). A stopped watcher can be
// started again.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	// 每次启动使用新的停止通道，旧的已在 Stop 中关闭
	w.stopChan = make(chan struct{})
	stop := w.stopChan
	if info, err := os.Stat(w.path); err == nil {
		w.lastModTime = info.ModTime()
	}
	w.mu.Unlock()

	go w.pollLoop(ctx, stop)

	w.logger.Info("manifest watcher started",
		zap.String("path", w.path),
		zap.Duration("poll_interval", w.pollInterval))

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.stopChan)
	w.running = false
	w.logger.Info("manifest watcher stopped")
}

func (w *Watcher) pollLoop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check inspects the manifest mtime and fires a debounced reload.
func (w *Watcher) check() {
	w.mu.Lock()
	info, err := os.Stat(w.path)
	if err != nil {
		if !w.lastModTime.IsZero() {
			// 文件被删除
			w.lastModTime = time.Time{}
			ev := FileEvent{Path: w.path, Op: FileOpRemove, Timestamp: time.Now()}
			callbacks := append([]func(FileEvent){}, w.callbacks...)
			w.mu.Unlock()
			w.logger.Warn("manifest removed", zap.String("path", w.path))
			for _, cb := range callbacks {
				cb(ev)
			}
			return
		}
		w.mu.Unlock()
		return
	}

	op := FileOpWrite
	if w.lastModTime.IsZero() {
		op = FileOpCreate
	} else if !info.ModTime().After(w.lastModTime) {
		w.mu.Unlock()
		return
	}

	now := time.Now()
	if now.Sub(w.lastEvent) < w.debounceDelay {
		w.mu.Unlock()
		return
	}
	w.lastModTime = info.ModTime()
	w.lastEvent = now
	callbacks := append([]func(FileEvent){}, w.callbacks...)
	w.mu.Unlock()

	ev := FileEvent{Path: w.path, Op: op, Timestamp: now}

	if w.registry != nil {
		m, err := LoadManifest(w.path)
		if err != nil {
			w.logger.Error("manifest reload failed", zap.Error(err))
		} else if err := w.registry.LoadManifest(m); err != nil {
			w.logger.Error("registry reload failed", zap.Error(err))
		} else {
			w.logger.Info("manifest reloaded",
				zap.String("op", op.String()),
				zap.Int("patterns", w.registry.Len()))
		}
	}

	for _, cb := range callbacks {
		cb(ev)
	}
}
