package llm

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/BaSui01/patternflow/types"
)

// StaticProvider 返回预置内容的 provider，用于离线演示和测试。
// Render 可自定义根据请求生成内容；为空时回显最后一条 user 消息。
type StaticProvider struct {
	ProviderName string
	Render       func(req *Request) (string, error)

	calls atomic.Int64
}

func (p *StaticProvider) Name() string {
	if p.ProviderName == "" {
		return "static"
	}
	return p.ProviderName
}

func (p *StaticProvider) Completion(_ context.Context, req *Request) (*Response, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "request has no messages")
	}
	n := p.calls.Add(1)

	content := ""
	if p.Render != nil {
		var err error
		content, err = p.Render(req)
		if err != nil {
			return nil, err
		}
	} else {
		for i := len(req.Messages) - 1; i >= 0; i-- {
			if req.Messages[i].Role == RoleUser {
				content = req.Messages[i].Content
				break
			}
		}
	}

	return &Response{
		ID:         fmt.Sprintf("static_%d", n),
		Model:      req.Model,
		Content:    content,
		StopReason: "end_turn",
	}, nil
}

func (p *StaticProvider) HealthCheck(context.Context) (*HealthStatus, error) {
	return &HealthStatus{Healthy: true}, nil
}

// Calls 返回累计调用次数。
func (p *StaticProvider) Calls() int64 { return p.calls.Load() }
