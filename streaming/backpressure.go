package streaming

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrBufferFull   = errors.New("buffer full, backpressure applied")
	ErrStreamClosed = errors.New("stream closed")
)

// DropPolicy defines what to do when the buffer is full.
type DropPolicy int

const (
	DropPolicyBlock  DropPolicy = iota // Block producer
	DropPolicyOldest                   // Drop oldest chunks
	DropPolicyNewest                   // Drop newest chunks
	DropPolicyError                    // Return error
)

// BackpressureConfig configures backpressure behavior.
type BackpressureConfig struct {
	BufferSize    int        `json:"buffer_size"`
	HighWaterMark float64    `json:"high_water_mark"` // 0.0-1.0
	LowWaterMark  float64    `json:"low_water_mark"`  // 0.0-1.0
	DropPolicy    DropPolicy `json:"drop_policy"`
}

// DefaultBackpressureConfig returns conservative defaults.
func DefaultBackpressureConfig() BackpressureConfig {
	return BackpressureConfig{
		BufferSize:    256,
		HighWaterMark: 0.8,
		LowWaterMark:  0.2,
		DropPolicy:    DropPolicyBlock,
	}
}

// BackpressureStream decouples a chunk producer from a slow consumer.
type BackpressureStream struct {
	config BackpressureConfig
	buffer chan Chunk
	done   chan struct{}
	closed atomic.Bool

	// closeMu serializes Close with in-flight writes so the buffer
	// channel is never closed under a pending send.
	closeMu sync.RWMutex

	// Metrics
	produced atomic.Int64
	consumed atomic.Int64
	dropped  atomic.Int64
	blocked  atomic.Int64

	paused atomic.Bool
}

// NewBackpressureStream creates a backpressure-aware stream.
func NewBackpressureStream(config BackpressureConfig) *BackpressureStream {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBackpressureConfig().BufferSize
	}
	return &BackpressureStream{
		config: config,
		buffer: make(chan Chunk, config.BufferSize),
		done:   make(chan struct{}),
	}
}

// Write sends a chunk to the stream with backpressure handling.
func (s *BackpressureStream) Write(ctx context.Context, chunk Chunk) error {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()

	if s.closed.Load() {
		return ErrStreamClosed
	}

	level := float64(len(s.buffer)) / float64(s.config.BufferSize)

	if level >= s.config.HighWaterMark {
		s.paused.Store(true)
		s.blocked.Add(1)

		switch s.config.DropPolicy {
		case DropPolicyBlock:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.done:
				return ErrStreamClosed
			case s.buffer <- chunk:
				s.produced.Add(1)
				return nil
			}

		case DropPolicyOldest:
			select {
			case <-s.buffer:
				s.dropped.Add(1)
			default:
			}
			// Another producer may have re-filled the freed slot.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.done:
				return ErrStreamClosed
			case s.buffer <- chunk:
				s.produced.Add(1)
				return nil
			}

		case DropPolicyNewest:
			s.dropped.Add(1)
			return nil

		case DropPolicyError:
			return ErrBufferFull
		}
	}

	if level <= s.config.LowWaterMark {
		s.paused.Store(false)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrStreamClosed
	case s.buffer <- chunk:
		s.produced.Add(1)
		return nil
	}
}

// Read receives a chunk from the stream.
func (s *BackpressureStream) Read(ctx context.Context) (Chunk, error) {
	if s.closed.Load() && len(s.buffer) == 0 {
		return Chunk{}, ErrStreamClosed
	}

	select {
	case <-ctx.Done():
		return Chunk{}, ctx.Err()
	case chunk, ok := <-s.buffer:
		if !ok {
			return Chunk{}, ErrStreamClosed
		}
		s.consumed.Add(1)
		return chunk, nil
	}
}

// ReadChan returns the underlying channel for range-style consumption.
func (s *BackpressureStream) ReadChan() <-chan Chunk {
	return s.buffer
}

// Close closes the stream. Pending chunks remain readable. Closing done
// first unblocks writers waiting in Write; the exclusive lock then waits
// for them to leave before the buffer channel is closed.
func (s *BackpressureStream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.done)

	s.closeMu.Lock()
	close(s.buffer)
	s.closeMu.Unlock()
	return nil
}

// IsPaused returns whether the producer side is paused by backpressure.
func (s *BackpressureStream) IsPaused() bool {
	return s.paused.Load()
}

// BufferLevel returns the current buffer utilization (0.0-1.0).
func (s *BackpressureStream) BufferLevel() float64 {
	return float64(len(s.buffer)) / float64(s.config.BufferSize)
}

// Stats returns stream statistics.
func (s *BackpressureStream) Stats() StreamStats {
	return StreamStats{
		Produced:   s.produced.Load(),
		Consumed:   s.consumed.Load(),
		Dropped:    s.dropped.Load(),
		Blocked:    s.blocked.Load(),
		BufferSize: len(s.buffer),
		BufferCap:  s.config.BufferSize,
		IsPaused:   s.paused.Load(),
	}
}

// StreamStats contains stream statistics.
type StreamStats struct {
	Produced   int64 `json:"produced"`
	Consumed   int64 `json:"consumed"`
	Dropped    int64 `json:"dropped"`
	Blocked    int64 `json:"blocked"`
	BufferSize int   `json:"buffer_size"`
	BufferCap  int   `json:"buffer_cap"`
	IsPaused   bool  `json:"is_paused"`
}
