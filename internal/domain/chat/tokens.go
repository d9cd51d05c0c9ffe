package chat

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/jmorelli/chatdocs/internal/infra/llm/ollama"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// countTokens estimates how many tokens a message body occupies. The
// cl100k_base encoding is loaded once; when the encoding data cannot be
// fetched the count falls back to a whitespace split, which overshoots
// rarely enough for budget trimming.
func countTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	if encoding != nil {
		return len(encoding.Encode(text, nil, nil))
	}
	return len(strings.Fields(text))
}

// trimToBudget drops the oldest messages until the running token count fits
// the budget. The final message is always kept so the current user turn is
// never trimmed away.
func trimToBudget(messages []ollama.Message, budget int) []ollama.Message {
	if budget <= 0 || len(messages) == 0 {
		return messages
	}

	total := 0
	start := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		cost := countTokens(messages[i].Content)
		if total+cost > budget && start < len(messages) {
			break
		}
		total += cost
		start = i
	}
	return messages[start:]
}
