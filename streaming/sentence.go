package streaming

import "strings"

// SentenceBuffer accumulates streamed text and releases only complete
// sentences, reducing render flicker in consumers that repaint per flush.
type SentenceBuffer struct {
	pending strings.Builder
}

// sentence terminators; a following space or end-of-buffer marks completion.
const terminators = ".!?"

// Push appends streamed text and returns any newly completed sentences.
func (b *SentenceBuffer) Push(text string) []string {
	b.pending.WriteString(text)
	s := b.pending.String()

	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(terminators, rune(s[i])) {
			continue
		}
		// 终结符后必须跟空白（或缓冲区结尾由 Flush 处理）才算完整句子
		if i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '\n' || s[i+1] == '\t') {
			out = append(out, strings.TrimSpace(s[start:i+1]))
			start = i + 2
		}
	}

	if start > 0 {
		rest := ""
		if start < len(s) {
			rest = s[start:]
		}
		b.pending.Reset()
		b.pending.WriteString(rest)
	}
	return out
}

// Flush returns whatever is pending, complete or not, and resets the buffer.
func (b *SentenceBuffer) Flush() string {
	s := strings.TrimSpace(b.pending.String())
	b.pending.Reset()
	return s
}
