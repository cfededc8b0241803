package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimator_CountTokens(t *testing.T) {
	t.Parallel()

	e := NewEstimatorTokenizer("any-model", 0)

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "ascii", text: "Hello world", want: 2}, // 11 chars / 4
		{name: "cjk", text: "你好世界", want: 2},          // 4 chars / 1.5
		{name: "single char floors to one", text: "a", want: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := e.CountTokens(tt.text)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEstimator_CountMessages(t *testing.T) {
	t.Parallel()

	e := NewEstimatorTokenizer("any-model", 0)
	got, err := e.CountMessages([]Message{
		{Role: "user", Content: "Hello world"},
		{Role: "assistant", Content: "你好世界"},
	})
	require.NoError(t, err)
	// (2+4) + (2+4) + 3 conversation-end overhead
	require.Equal(t, 15, got)
}

func TestEstimator_DecodeUnsupported(t *testing.T) {
	t.Parallel()

	e := NewEstimatorTokenizer("any-model", 0)
	_, err := e.Decode([]int{1, 2, 3})
	require.Error(t, err)
}

func TestRegistry_PrefixMatch(t *testing.T) {
	RegisterTokenizer("claude-sonnet", NewEstimatorTokenizer("claude-sonnet", 200000))

	got, err := GetTokenizer("claude-sonnet-4-20250514")
	require.NoError(t, err)
	require.Equal(t, 200000, got.MaxTokens())

	_, err = GetTokenizer("unknown-model-xyz")
	require.Error(t, err)
}

func TestRegistry_FallbackEstimator(t *testing.T) {
	got := GetTokenizerOrEstimator("unknown-model-xyz")
	require.Equal(t, "estimator", got.Name())
	require.Equal(t, 4096, got.MaxTokens())
}

func TestTiktoken_EncodingSelection(t *testing.T) {
	t.Parallel()

	tok, err := NewTiktokenTokenizer("gpt-4o-mini")
	require.NoError(t, err)
	require.Equal(t, "tiktoken[o200k_base]", tok.Name())
	require.Equal(t, 128000, tok.MaxTokens())

	tok, err = NewTiktokenTokenizer("some-future-model")
	require.NoError(t, err)
	require.Equal(t, "tiktoken[cl100k_base]", tok.Name())
	require.Equal(t, 8192, tok.MaxTokens())
}
