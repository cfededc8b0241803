package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/BaSui01/patternflow/types"
)

// Role 消息角色。
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message 统一的对话消息格式。
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request 统一的补全请求。
type Request struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

// Usage token 用量统计。
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response 统一的补全响应。
type Response struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	Content    string `json:"content"`
	StopReason string `json:"stop_reason,omitempty"`
	Usage      Usage  `json:"usage"`
}

// HealthStatus provider 健康状态。
type HealthStatus struct {
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
}

// Provider 是内容生成后端的统一接口。
type Provider interface {
	// Name 返回 provider 标识。
	Name() string

	// Completion 执行一次补全请求。
	Completion(ctx context.Context, req *Request) (*Response, error)

	// HealthCheck 探测上游可用性。
	HealthCheck(ctx context.Context) (*HealthStatus, error)
}

// rateLimitedProvider 在 Provider 外层套一个令牌桶限流器，
// 防止批量生成时打爆上游配额。
type rateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimited 包装 provider，限制每秒请求数。
func NewRateLimited(inner Provider, rps float64, burst int) Provider {
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (p *rateLimitedProvider) Name() string { return p.inner.Name() }

func (p *rateLimitedProvider) Completion(ctx context.Context, req *Request) (*Response, error) {
	// 等待令牌，context 取消时立即返回
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, types.NewError(types.ErrRateLimited, err.Error()).WithCause(err)
	}
	return p.inner.Completion(ctx, req)
}

func (p *rateLimitedProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	return p.inner.HealthCheck(ctx)
}
