package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

func TestManager_StartAndShutdown(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "ok")
	})

	m := NewManager(handler, testConfig(), zap.NewNop())
	require.NoError(t, m.Start())
	require.True(t, m.IsRunning())

	resp, err := http.Get("http://" + m.Addr())
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, m.Shutdown(context.Background()))
	require.False(t, m.IsRunning())

	// 重复关闭是幂等的
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestManager_ErrorChannelReportsServeFailure(t *testing.T) {
	t.Parallel()

	m := NewManager(http.NotFoundHandler(), testConfig(), zap.NewNop())

	// 证书文件不存在，ServeTLS 会异步失败并写入错误通道
	require.NoError(t, m.StartTLS("no-such-cert.pem", "no-such-key.pem"))

	select {
	case err := <-m.Errors():
		require.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("expected an async serve error")
	}

	require.NoError(t, m.Shutdown(context.Background()))
}

func TestManager_DoubleStartRejected(t *testing.T) {
	t.Parallel()

	m := NewManager(http.NotFoundHandler(), testConfig(), zap.NewNop())
	require.NoError(t, m.Start())
	defer func() { _ = m.Shutdown(context.Background()) }()

	require.Error(t, m.Start())
}

func TestManager_StartAfterCloseRejected(t *testing.T) {
	t.Parallel()

	m := NewManager(http.NotFoundHandler(), testConfig(), zap.NewNop())
	require.NoError(t, m.Start())
	require.NoError(t, m.Shutdown(context.Background()))

	require.Error(t, m.Start())
}
