// Package codegen runs the content generation pipeline: for each catalog
// pattern it renders prompt templates, calls the configured provider with
// retry and rate limiting, and writes the generated documents next to the
// manifest. Responses are cached by prompt digest so re-runs are cheap.
package codegen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/patternflow/llm"
	"github.com/BaSui01/patternflow/llm/retry"
	"github.com/BaSui01/patternflow/llm/tokenizer"
	"github.com/BaSui01/patternflow/types"
)

// PipelineConfig configures a generation run.
type PipelineConfig struct {
	OutputDir       string        // root directory; each pattern gets a subdirectory
	Model           string        // model passed to the provider
	Concurrency     int           // patterns generated in parallel
	RequestsPerSec  float64       // provider rate limit shared across workers
	Burst           int           // rate limiter burst
	MaxPromptTokens int           // reject prompts over this budget (0 = no check)
	Force           bool          // regenerate even when output is up to date
	RetryPolicy     *retry.RetryPolicy
}

// DefaultPipelineConfig returns defaults for interactive runs.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		OutputDir:       "patterns",
		Concurrency:     4,
		RequestsPerSec:  2,
		Burst:           2,
		MaxPromptTokens: 8000,
	}
}

// Report summarizes a pipeline run.
type Report struct {
	RunID     string
	Generated int64
	Skipped   int64
	CacheHits int64
	Failed    int64
}

// Pipeline generates pattern documents through an llm.Provider.
type Pipeline struct {
	provider llm.Provider
	retryer  retry.Retryer
	cache    ResponseCache
	metrics  *Metrics
	steps    []Step
	cfg      PipelineConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewPipeline wires the provider with rate limiting and retry.
func NewPipeline(provider llm.Provider, cache ResponseCache, metrics *Metrics, cfg PipelineConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultPipelineConfig().Concurrency
	}
	if cfg.RequestsPerSec > 0 {
		provider = llm.NewRateLimited(provider, cfg.RequestsPerSec, cfg.Burst)
	}

	policy := cfg.RetryPolicy
	if policy == nil {
		policy = retry.DefaultRetryPolicy()
	}
	// Only errors marked transient below are worth retrying.
	policy.RetryableErrors = append(policy.RetryableErrors, errTransient)
	if metrics != nil {
		prev := policy.OnRetry
		policy.OnRetry = func(attempt int, err error, delay time.Duration) {
			metrics.Retries.Inc()
			if prev != nil {
				prev(attempt, err, delay)
			}
		}
	}

	return &Pipeline{
		provider: provider,
		retryer:  retry.NewBackoffRetryer(policy, logger.Named("retry")),
		cache:    cache,
		metrics:  metrics,
		steps:    DefaultSteps(),
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "codegen")),
		now:      time.Now,
	}
}

// WithSteps overrides the default step sequence.
func (p *Pipeline) WithSteps(steps []Step) *Pipeline {
	p.steps = steps
	return p
}

// Run generates documents for every pattern. Patterns run concurrently
// with a bounded worker count; the steps of one pattern run in order.
// A failed pattern does not stop the others; the first error is returned
// alongside the report.
func (p *Pipeline) Run(ctx context.Context, patterns []types.Pattern) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	logger := p.logger.With(zap.String("run_id", report.RunID))
	logger.Info("generation run started",
		zap.Int("patterns", len(patterns)),
		zap.Int("steps", len(p.steps)),
	)

	var firstErr atomic.Pointer[error]
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for _, pat := range patterns {
		pat := pat
		g.Go(func() error {
			if err := p.runPattern(ctx, pat, report, logger); err != nil {
				atomic.AddInt64(&report.Failed, 1)
				firstErr.CompareAndSwap(nil, &err)
				logger.Error("pattern generation failed",
					zap.String("pattern", pat.ID),
					zap.Error(err),
				)
				// Keep going; the errgroup only propagates context errors.
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		if ep := firstErr.Load(); ep != nil {
			err = *ep
		}
	}

	logger.Info("generation run finished",
		zap.Int64("generated", atomic.LoadInt64(&report.Generated)),
		zap.Int64("skipped", atomic.LoadInt64(&report.Skipped)),
		zap.Int64("cache_hits", atomic.LoadInt64(&report.CacheHits)),
		zap.Int64("failed", atomic.LoadInt64(&report.Failed)),
	)
	return report, err
}

// runPattern executes the step sequence for one pattern.
func (p *Pipeline) runPattern(ctx context.Context, pat types.Pattern, report *Report, logger *zap.Logger) error {
	for _, step := range p.steps {
		outputPath := filepath.Join(p.cfg.OutputDir, pat.ID, step.OutputFile)

		if !p.cfg.Force && upToDate(outputPath, pat.UpdatedAt) {
			atomic.AddInt64(&report.Skipped, 1)
			if p.metrics != nil {
				p.metrics.Skipped.Inc()
			}
			continue
		}

		content, err := p.generate(ctx, step, pat, report)
		if err != nil {
			if p.metrics != nil {
				p.metrics.Failures.Inc()
			}
			return err
		}

		if err := writeOutput(outputPath, content); err != nil {
			return types.NewError(types.ErrStoreFailure, "write "+outputPath).WithCause(err)
		}

		atomic.AddInt64(&report.Generated, 1)
		if p.metrics != nil {
			p.metrics.StepsTotal.WithLabelValues(step.Name).Inc()
		}
		logger.Debug("step complete",
			zap.String("pattern", pat.ID),
			zap.String("step", step.Name),
			zap.Int("bytes", len(content)),
		)
	}
	return nil
}

// errTransient marks provider errors that the retryer may retry.
var errTransient = errors.New("transient provider error")

// generate renders the prompt, consults the cache, and falls through to
// the provider with retry.
func (p *Pipeline) generate(ctx context.Context, step Step, pat types.Pattern, report *Report) (string, error) {
	prompt, err := step.Render(pat)
	if err != nil {
		return "", types.NewError(types.ErrInternalError, "render prompt for "+step.Name).WithCause(err)
	}

	if p.cfg.MaxPromptTokens > 0 {
		tok := tokenizer.GetTokenizerOrEstimator(p.cfg.Model)
		n, err := tok.CountTokens(prompt)
		if err == nil && n > p.cfg.MaxPromptTokens {
			return "", types.NewError(types.ErrContextTooLong, "prompt exceeds token budget")
		}
	}

	key := CacheKey(p.cfg.Model, step.System+"\x00"+prompt)
	if cached, err := p.cache.Get(ctx, key); err == nil {
		atomic.AddInt64(&report.CacheHits, 1)
		if p.metrics != nil {
			p.metrics.CacheHits.Inc()
		}
		return cached, nil
	}

	resp, err := retry.DoWithResultTyped[*llm.Response](p.retryer, ctx, func() (*llm.Response, error) {
		resp, err := p.provider.Completion(ctx, &llm.Request{
			Model: p.cfg.Model,
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: step.System},
				{Role: llm.RoleUser, Content: prompt},
			},
		})
		if err != nil {
			if types.IsRetryable(err) {
				return nil, fmt.Errorf("%w: %w", errTransient, err)
			}
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}

	if err := p.cache.Set(ctx, key, resp.Content); err != nil {
		p.logger.Warn("cache set failed", zap.Error(err))
	}
	return resp.Content, nil
}

// upToDate reports whether the output file exists and is newer than the
// manifest entry, which makes the step idempotent across runs.
func upToDate(path string, updatedAt time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if updatedAt.IsZero() {
		return true
	}
	return info.ModTime().After(updatedAt)
}

func writeOutput(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
