package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/api"
	"github.com/BaSui01/patternflow/api/handlers"
	"github.com/BaSui01/patternflow/catalog"
	"github.com/BaSui01/patternflow/types"
)

func newTestRouter(t *testing.T, checks ...handlers.HealthCheck) (*catalog.Registry, string, *httptest.Server) {
	t.Helper()

	registry := catalog.NewRegistry(catalog.RegistryConfig{}, zap.NewNop())
	require.NoError(t, registry.LoadManifest(&types.Manifest{
		Version: "1",
		Patterns: []types.Pattern{
			{ID: "structured-memory", Title: "Structured Memory", Summary: "Tiered memory.", Tags: []string{"memory"}},
			{ID: "decision-ledger", Title: "Decision Ledger", Summary: "Append-only log.", Tags: []string{"audit"}},
		},
	}))

	docsDir := t.TempDir()
	srv := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Registry: registry,
		DocsDir:  docsDir,
		Checks:   checks,
		Gatherer: prometheus.NewRegistry(),
		Version:  "test",
		Logger:   zap.NewNop(),
	}))
	t.Cleanup(srv.Close)
	return registry, docsDir, srv
}

func getJSON(t *testing.T, url string, wantStatus int) handlers.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)

	var envelope handlers.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func TestPatterns_List(t *testing.T) {
	t.Parallel()

	_, _, srv := newTestRouter(t)

	envelope := getJSON(t, srv.URL+"/api/patterns", http.StatusOK)
	require.True(t, envelope.Success)

	data := envelope.Data.(map[string]any)
	require.Equal(t, float64(2), data["total"])
}

func TestPatterns_Search(t *testing.T) {
	t.Parallel()

	_, _, srv := newTestRouter(t)

	envelope := getJSON(t, srv.URL+"/api/patterns?q=audit", http.StatusOK)
	data := envelope.Data.(map[string]any)
	require.Equal(t, float64(1), data["total"])
}

func TestPatterns_Get(t *testing.T) {
	t.Parallel()

	_, _, srv := newTestRouter(t)

	envelope := getJSON(t, srv.URL+"/api/patterns/structured-memory", http.StatusOK)
	require.True(t, envelope.Success)
	data := envelope.Data.(map[string]any)
	require.Equal(t, "Structured Memory", data["title"])

	envelope = getJSON(t, srv.URL+"/api/patterns/nope", http.StatusNotFound)
	require.False(t, envelope.Success)
	require.Equal(t, string(types.ErrPatternNotFound), envelope.Error.Code)
}

func TestPatterns_Readme(t *testing.T) {
	t.Parallel()

	_, docsDir, srv := newTestRouter(t)

	readme := filepath.Join(docsDir, "structured-memory", "README.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(readme), 0o755))
	require.NoError(t, os.WriteFile(readme, []byte("# Structured Memory\n"), 0o644))

	resp, err := http.Get(srv.URL + "/api/patterns/structured-memory/readme")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/markdown")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "# Structured Memory\n", string(body))

	// 未生成文档的模式返回 404
	resp, err = http.Get(srv.URL + "/api/patterns/decision-ledger/readme")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth_Endpoints(t *testing.T) {
	t.Parallel()

	failing := handlers.NewPingCheck("redis", func(context.Context) error {
		return errors.New("connection refused")
	})
	_, _, srv := newTestRouter(t, failing)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// 注册的检查失败时 readyz 返回 503
	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var status handlers.HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	require.Equal(t, "unhealthy", status.Status)
	require.Equal(t, "fail", status.Checks["redis"].Status)
}

func TestMetrics_Endpoint(t *testing.T) {
	t.Parallel()

	_, _, srv := newTestRouter(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReload_PushesOnRegistryChange(t *testing.T) {
	t.Parallel()

	registry, _, srv := newTestRouter(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):] + "/ws/reload"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	// 给服务端一点时间完成订阅
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, registry.Upsert(types.Pattern{
		ID:    "tool-fallbacks",
		Title: "Tool Fallbacks",
	}))

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageText, typ)
	require.JSONEq(t, `{"event":"catalog_reload"}`, string(data))
}
