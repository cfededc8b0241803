package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeManifest(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	writeManifest(t, path, `{"version":"1","patterns":[{"id":"pathscore","title":"PathScore"}]}`)

	r := NewRegistry(RegistryConfig{}, zap.NewNop())
	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.NoError(t, r.LoadManifest(m))
	require.Equal(t, 1, r.Len())

	w, err := NewWatcher(path, r,
		WithPollInterval(10*time.Millisecond),
		WithDebounceDelay(time.Millisecond),
		WithWatcherLogger(zap.NewNop()),
	)
	require.NoError(t, err)

	events := make(chan FileEvent, 8)
	w.OnChange(func(ev FileEvent) { events <- ev })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Poll granularity is mtime-based; make sure the new mtime is observable.
	time.Sleep(20 * time.Millisecond)
	writeManifest(t, path, `{"version":"2","patterns":[{"id":"pathscore","title":"PathScore"},{"id":"acv","title":"ACV"}]}`)
	now := time.Now()
	require.NoError(t, os.Chtimes(path, now, now))

	select {
	case ev := <-events:
		require.Equal(t, FileOpWrite, ev.Op)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a write event")
	}

	require.Eventually(t, func() bool { return r.Len() == 2 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatcher_RestartAfterStop(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	writeManifest(t, path, `{"version":"1","patterns":[]}`)

	w, err := NewWatcher(path, nil, WithPollInterval(10*time.Millisecond), WithDebounceDelay(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	w.Stop()

	// A stopped watcher starts again and keeps delivering events.
	events := make(chan FileEvent, 8)
	w.OnChange(func(ev FileEvent) { events <- ev })
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	time.Sleep(20 * time.Millisecond)
	writeManifest(t, path, `{"version":"2","patterns":[]}`)
	now := time.Now()
	require.NoError(t, os.Chtimes(path, now, now))

	select {
	case ev := <-events:
		require.Equal(t, FileOpWrite, ev.Op)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a write event after restart")
	}
}

func TestWatcher_StartTwiceFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	writeManifest(t, path, `{"version":"1","patterns":[]}`)

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	require.Error(t, w.Start(ctx))
	w.Stop()
}
