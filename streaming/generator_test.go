package streaming

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGenerator_ConcatenationEqualsFullContent(t *testing.T) {
	t.Parallel()

	content := "Streaming first means the user sees progress immediately. " +
		"Chunks arrive in order, and the final chunk is flagged."

	g := NewGenerator(GeneratorConfig{ChunkSize: 7}, zap.NewNop())
	ctx := context.Background()

	chunks, err := g.Stream(ctx, content)
	require.NoError(t, err)

	var parts []string
	var finals int
	lastIndex := -1
	for c := range chunks {
		require.Equal(t, lastIndex+1, c.Index, "indices are sequential")
		lastIndex = c.Index
		parts = append(parts, c.Content)
		if c.Final {
			finals++
		}
	}

	require.Equal(t, content, strings.Join(parts, ""))
	require.Equal(t, 1, finals, "exactly one final chunk")
}

func TestGenerator_RuneSafeChunking(t *testing.T) {
	t.Parallel()

	content := "模式目录：流式优先 — streaming first ✔"
	g := NewGenerator(GeneratorConfig{ChunkSize: 3}, zap.NewNop())

	chunks, err := g.Stream(context.Background(), content)
	require.NoError(t, err)

	full, err := Collect(context.Background(), chunks)
	require.NoError(t, err)
	require.Equal(t, content, full)
}

func TestGenerator_CancellationStopsStream(t *testing.T) {
	t.Parallel()

	g := NewGenerator(GeneratorConfig{ChunkSize: 1, Delay: 50 * time.Millisecond}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	chunks, err := g.Stream(ctx, strings.Repeat("x", 100))
	require.NoError(t, err)

	<-chunks // first chunk arrives without delay
	cancel()

	// The channel must close promptly after cancellation.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-chunks:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream did not close after cancellation")
		}
	}
}

func TestGenerator_EmptyContentRejected(t *testing.T) {
	t.Parallel()

	g := NewGenerator(DefaultGeneratorConfig(), zap.NewNop())
	_, err := g.Stream(context.Background(), "")
	require.Error(t, err)
}

func TestSentenceBuffer(t *testing.T) {
	t.Parallel()

	var b SentenceBuffer

	require.Empty(t, b.Push("Streaming keeps users"))
	got := b.Push(" engaged. Partial text stays bu")
	require.Equal(t, []string{"Streaming keeps users engaged."}, got)

	require.Empty(t, b.Push("ffered until a boundary"))
	require.Equal(t, "Partial text stays buffered until a boundary", b.Flush())
	require.Empty(t, b.Flush())
}
