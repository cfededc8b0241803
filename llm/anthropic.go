package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/types"
)

// AnthropicConfig Anthropic provider 配置。
type AnthropicConfig struct {
	APIKey  string        `yaml:"api_key" json:"api_key"`
	BaseURL string        `yaml:"base_url" json:"base_url"`
	Model   string        `yaml:"model" json:"model"`
	Version string        `yaml:"version" json:"version"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// AnthropicProvider 实现 Anthropic Messages API 的 Provider。
// 与 OpenAI 风格 API 的差异：
// 1. 认证使用 x-api-key 请求头而非 Bearer Token
// 2. system 消息单独传递，不放在 messages 数组里
// 3. 响应 content 是内容块数组
type AnthropicProvider struct {
	cfg    AnthropicConfig
	client *http.Client
	logger *zap.Logger
}

// NewAnthropicProvider 创建 Anthropic Provider。
func NewAnthropicProvider(cfg AnthropicConfig, logger *zap.Logger) *AnthropicProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Version == "" {
		cfg.Version = "2023-06-01"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second // 长文档生成响应较慢
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnthropicProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger.With(zap.String("provider", "anthropic")),
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// Anthropic 的消息结构
type anthropicMessage struct {
	Role    string `json:"role"` // user 或 assistant
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"` // system 消息单独传递
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature,omitempty"`
	StopSeq     []string           `json:"stop_sequences,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason"`
	Usage      *anthropicUsage    `json:"usage,omitempty"`
}

type anthropicErrorResp struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *AnthropicProvider) buildHeaders(req *http.Request) {
	// Anthropic 使用 x-api-key 认证
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("anthropic-version", p.cfg.Version)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// convertMessages 提取 system 消息并转换其余消息。
func convertMessages(msgs []Message) (string, []anthropicMessage) {
	var system string
	out := make([]anthropicMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleSystem {
			system = m.Content
			continue
		}
		out = append(out, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}
	return system, out
}

func (p *AnthropicProvider) Completion(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "request has no messages")
	}

	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	system, messages := convertMessages(req.Messages)
	body := anthropicRequest{
		Model:       model,
		Messages:    messages,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		StopSeq:     req.Stop,
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/v1/messages", strings.TrimRight(p.cfg.BaseURL, "/"))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, err.Error()).WithCause(err)
	}
	p.buildHeaders(httpReq)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, err.Error()).
			WithHTTPStatus(http.StatusBadGateway).WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, mapAnthropicError(resp.StatusCode, readErrMsg(resp.Body))
	}

	var ar anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, err.Error()).
			WithHTTPStatus(http.StatusBadGateway).WithRetryable(true).WithCause(err)
	}

	var sb strings.Builder
	for _, c := range ar.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}

	out := &Response{
		ID:         ar.ID,
		Model:      ar.Model,
		Content:    sb.String(),
		StopReason: ar.StopReason,
	}
	if ar.Usage != nil {
		out.Usage = Usage{
			PromptTokens:     ar.Usage.InputTokens,
			CompletionTokens: ar.Usage.OutputTokens,
			TotalTokens:      ar.Usage.InputTokens + ar.Usage.OutputTokens,
		}
	}

	p.logger.Debug("completion done",
		zap.String("model", out.Model),
		zap.Int("total_tokens", out.Usage.TotalTokens),
		zap.Duration("latency", time.Since(start)),
	)
	return out, nil
}

func (p *AnthropicProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/v1/models", strings.TrimRight(p.cfg.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &HealthStatus{Healthy: false}, err
	}
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return &HealthStatus{Healthy: false, Latency: latency}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HealthStatus{Healthy: false, Latency: latency},
			fmt.Errorf("anthropic health check failed: status=%d msg=%s", resp.StatusCode, readErrMsg(resp.Body))
	}
	return &HealthStatus{Healthy: true, Latency: latency}, nil
}

// readErrMsg 从错误响应体中提取消息，解析失败时退回原始文本。
func readErrMsg(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var er anthropicErrorResp
	if err := json.Unmarshal(raw, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

// mapAnthropicError 将 HTTP 状态码映射为统一错误码。
func mapAnthropicError(status int, msg string) *types.Error {
	code := types.ErrUpstreamError
	retryable := false

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = types.ErrAuthentication
	case status == http.StatusTooManyRequests:
		code = types.ErrRateLimited
		retryable = true
	case status == http.StatusNotFound:
		code = types.ErrModelNotFound
	case status == http.StatusBadRequest:
		code = types.ErrInvalidRequest
	case status >= 500:
		code = types.ErrUpstreamError
		retryable = true
	}

	return types.NewError(code, msg).WithHTTPStatus(status).WithRetryable(retryable)
}
