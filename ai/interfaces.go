package ai

import "context"

type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedderFactory builds an Embedder for a config. The gateway calls it
// whenever the credential changes.
type EmbedderFactory func(config *Config) (Embedder, error)

// TokenCounter estimates the number of provider tokens in text.
type TokenCounter func(text string) int

// EstimateTokens approximates token usage at four characters per token.
func EstimateTokens(text string) int {
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
