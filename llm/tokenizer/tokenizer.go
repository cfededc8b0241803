package tokenizer

import (
	"strings"
	"sync"

	"github.com/BaSui01/patternflow/types"
)

// Tokenizer 是统一的 token 计数接口。
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数。
	CountTokens(text string) (int, error)

	// CountMessages 返回消息列表的总 token 数，
	// 包括每条消息的开销（角色标记、分隔符等）。
	CountMessages(messages []Message) (int, error)

	// Encode 将文本转换为 token ID 列表。
	Encode(text string) ([]int, error)

	// Decode 将 token ID 转换回文本。
	Decode(tokens []int) (string, error)

	// MaxTokens 返回模型的最大上下文长度。
	MaxTokens() int

	// Name 返回分词器名称。
	Name() string
}

// Message 轻量级消息结构，避免与 llm 包循环依赖。
type Message struct {
	Role    string
	Content string
}

// 全局分词器注册表。
var (
	modelTokenizers   = make(map[string]Tokenizer)
	modelTokenizersMu sync.RWMutex
)

// RegisterTokenizer 为给定模型名称注册分词器。
func RegisterTokenizer(model string, t Tokenizer) {
	modelTokenizersMu.Lock()
	defer modelTokenizersMu.Unlock()
	modelTokenizers[model] = t
}

// GetTokenizer 返回模型注册的分词器，支持前缀匹配
// （如 "gpt-4o" 匹配 "gpt-4o-mini"）。
func GetTokenizer(model string) (Tokenizer, error) {
	modelTokenizersMu.RLock()
	defer modelTokenizersMu.RUnlock()

	if t, ok := modelTokenizers[model]; ok {
		return t, nil
	}

	// 前缀匹配
	for prefix, t := range modelTokenizers {
		if strings.HasPrefix(model, prefix) {
			return t, nil
		}
	}

	return nil, types.NewError(types.ErrTokenizerError, "no tokenizer registered for model: "+model)
}

// GetTokenizerOrEstimator 返回模型注册的分词器，
// 未注册时退回通用估算器。
func GetTokenizerOrEstimator(model string) Tokenizer {
	t, err := GetTokenizer(model)
	if err != nil {
		return NewEstimatorTokenizer(model, 0)
	}
	return t
}
