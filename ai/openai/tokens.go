package openai

import (
	"log/slog"
	"sync"

	"github.com/nomatterpluda/browser-history-search/ai"
	"github.com/pkoukk/tiktoken-go"
)

// NewTokenCounter returns a counter using the model's BPE encoding.
// The encoding is loaded lazily; if it cannot be loaded the counter
// falls back to ai.EstimateTokens.
func NewTokenCounter(model string) ai.TokenCounter {
	var (
		once sync.Once
		enc  *tiktoken.Tiktoken
	)
	return func(text string) int {
		once.Do(func() {
			var err error
			enc, err = tiktoken.EncodingForModel(model)
			if err != nil {
				slog.Default().Debug("token encoding unavailable, estimating", "model", model, "err", err)
			}
		})
		if enc == nil {
			return ai.EstimateTokens(text)
		}
		return len(enc.Encode(text, nil, nil))
	}
}
