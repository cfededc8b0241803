package streaming

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackpressureStream_WriteRead(t *testing.T) {
	t.Parallel()

	s := NewBackpressureStream(BackpressureConfig{
		BufferSize:    4,
		HighWaterMark: 0.8,
		LowWaterMark:  0.2,
		DropPolicy:    DropPolicyBlock,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Write(ctx, Chunk{Content: fmt.Sprintf("c%d", i), Index: i}))
	}

	c, err := s.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "c0", c.Content)

	stats := s.Stats()
	require.Equal(t, int64(3), stats.Produced)
	require.Equal(t, int64(1), stats.Consumed)
}

func TestBackpressureStream_DropOldest(t *testing.T) {
	t.Parallel()

	s := NewBackpressureStream(BackpressureConfig{
		BufferSize:    4,
		HighWaterMark: 0.5,
		LowWaterMark:  0.1,
		DropPolicy:    DropPolicyOldest,
	})
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, Chunk{Content: "a"}))
	require.NoError(t, s.Write(ctx, Chunk{Content: "b"}))
	require.NoError(t, s.Write(ctx, Chunk{Content: "c"})) // level 0.5 -> drops "a"

	c, err := s.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "b", c.Content)
	require.Equal(t, int64(1), s.Stats().Dropped)
}

func TestBackpressureStream_ErrorPolicy(t *testing.T) {
	t.Parallel()

	s := NewBackpressureStream(BackpressureConfig{
		BufferSize:    2,
		HighWaterMark: 0.5,
		LowWaterMark:  0.1,
		DropPolicy:    DropPolicyError,
	})
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, Chunk{Content: "a"}))
	err := s.Write(ctx, Chunk{Content: "b"})
	require.ErrorIs(t, err, ErrBufferFull)
	require.True(t, s.IsPaused())
}

func TestBackpressureStream_CloseSemantics(t *testing.T) {
	t.Parallel()

	s := NewBackpressureStream(DefaultBackpressureConfig())
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, Chunk{Content: "pending"}))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "double close is a no-op")

	// Pending chunks drain after close.
	c, err := s.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "pending", c.Content)

	_, err = s.Read(ctx)
	require.ErrorIs(t, err, ErrStreamClosed)

	require.ErrorIs(t, s.Write(ctx, Chunk{Content: "late"}), ErrStreamClosed)
}

func TestBackpressureStream_DropOldestCloseDuringWrites(t *testing.T) {
	t.Parallel()

	s := NewBackpressureStream(BackpressureConfig{
		BufferSize:    2,
		HighWaterMark: 0.5,
		LowWaterMark:  0.1,
		DropPolicy:    DropPolicyOldest,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Several producers hammer the full buffer while the stream closes
	// underneath them; every writer must come back with ErrStreamClosed,
	// not a panic or a hang.
	const producers = 4
	errs := make(chan error, producers)
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if err := s.Write(ctx, Chunk{Content: "x"}); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.Close())
	wg.Wait()

	for i := 0; i < producers; i++ {
		require.ErrorIs(t, <-errs, ErrStreamClosed)
	}

	// Whatever survived the drops is still drainable.
	for range s.ReadChan() {
	}
}

func TestBackpressureStream_ReadChanAndBufferLevel(t *testing.T) {
	t.Parallel()

	s := NewBackpressureStream(BackpressureConfig{
		BufferSize:    4,
		HighWaterMark: 0.9,
		LowWaterMark:  0.1,
		DropPolicy:    DropPolicyBlock,
	})
	ctx := context.Background()

	require.Zero(t, s.BufferLevel())
	require.NoError(t, s.Write(ctx, Chunk{Content: "a"}))
	require.NoError(t, s.Write(ctx, Chunk{Content: "b"}))
	require.InDelta(t, 0.5, s.BufferLevel(), 1e-9)

	require.NoError(t, s.Close())

	var got []string
	for c := range s.ReadChan() {
		got = append(got, c.Content)
	}
	require.Equal(t, []string{"a", "b"}, got)
	require.Zero(t, s.BufferLevel())
}

func TestBackpressureStream_BlockPolicyUnblocksOnRead(t *testing.T) {
	t.Parallel()

	s := NewBackpressureStream(BackpressureConfig{
		BufferSize:    1,
		HighWaterMark: 0.5,
		LowWaterMark:  0.1,
		DropPolicy:    DropPolicyBlock,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Write(ctx, Chunk{Content: "a"}))

	done := make(chan error, 1)
	go func() { done <- s.Write(ctx, Chunk{Content: "b"}) }()

	// The writer is blocked until the consumer drains one chunk.
	select {
	case <-done:
		t.Fatal("write should block while buffer is full")
	case <-time.After(50 * time.Millisecond):
	}

	_, err := s.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, <-done)
}
