package ai

import (
	"unicode/utf8"

	"github.com/tiktoken-go/tokenizer"
)

// Budget trims prompt context to a token limit. The cl100k encoding is only an
// approximation for non-OpenAI models, which is enough to keep prompts bounded.
type Budget struct {
	codec     tokenizer.Codec
	maxTokens int
}

// NewBudget returns a budget of maxTokens. When the encoding can not be loaded
// the budget falls back to a characters-per-token estimate.
func NewBudget(maxTokens int) *Budget {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return &Budget{maxTokens: maxTokens}
	}
	return &Budget{codec: codec, maxTokens: maxTokens}
}

// Count returns the token count of text.
func (b *Budget) Count(text string) int {
	if b == nil || b.codec == nil {
		return (utf8.RuneCountInString(text) + 3) / 4
	}
	ids, _, err := b.codec.Encode(text)
	if err != nil {
		return (utf8.RuneCountInString(text) + 3) / 4
	}
	return len(ids)
}

// Tail keeps the newest lines whose combined size fits the budget, in original order.
// A nil budget or non-positive limit keeps nothing.
func (b *Budget) Tail(lines []string) []string {
	if b == nil || b.maxTokens <= 0 {
		return nil
	}

	used := 0
	start := len(lines)
	for i := len(lines) - 1; i >= 0; i-- {
		cost := b.Count(lines[i]) + 1
		if used+cost > b.maxTokens {
			break
		}
		used += cost
		start = i
	}
	return lines[start:]
}
