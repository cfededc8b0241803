// Package streaming implements streaming-first content delivery: chunked
// generation with pacing, backpressure-aware buffering, and
// sentence-boundary flushing.
package streaming

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/types"
)

// Chunk is one increment of streamed content.
type Chunk struct {
	Content   string    `json:"content"`
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Final     bool      `json:"final"`
}

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	// ChunkSize is the chunk length in runes. Content is split on rune
	// boundaries so multi-byte text never tears.
	ChunkSize int

	// Delay is the pause between chunks, simulating model cadence.
	// Zero means no pacing.
	Delay time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// DefaultGeneratorConfig returns defaults suitable for demos.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		ChunkSize: 24,
		Delay:     0,
	}
}

// Generator streams content incrementally. The concatenation of all
// delivered chunk contents is always exactly the input content.
type Generator struct {
	config GeneratorConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator creates a generator.
func NewGenerator(config GeneratorConfig, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultGeneratorConfig().ChunkSize
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Generator{
		config: config,
		logger: logger.With(zap.String("component", "stream_generator")),
		now:    now,
	}
}

// Stream splits content into chunks and delivers them on the returned
// channel, honoring the configured delay between chunks. The channel is
// closed after the final chunk (flagged Final) or on context cancellation.
func (g *Generator) Stream(ctx context.Context, content string) (<-chan Chunk, error) {
	if content == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "content is empty")
	}

	runes := []rune(content)
	out := make(chan Chunk)

	go func() {
		defer close(out)

		index := 0
		for start := 0; start < len(runes); start += g.config.ChunkSize {
			end := start + g.config.ChunkSize
			if end > len(runes) {
				end = len(runes)
			}

			if index > 0 && g.config.Delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(g.config.Delay):
				}
			}

			chunk := Chunk{
				Content:   string(runes[start:end]),
				Index:     index,
				Timestamp: g.now(),
				Final:     end == len(runes),
			}

			select {
			case <-ctx.Done():
				return
			case out <- chunk:
			}
			index++
		}

		g.logger.Debug("stream complete", zap.Int("chunks", index))
	}()

	return out, nil
}

// Collect drains a chunk channel and reassembles the full content.
// It returns early with the context error on cancellation.
func Collect(ctx context.Context, chunks <-chan Chunk) (string, error) {
	var full []byte
	for {
		select {
		case <-ctx.Done():
			return string(full), ctx.Err()
		case c, ok := <-chunks:
			if !ok {
				return string(full), nil
			}
			full = append(full, c.Content...)
		}
	}
}
