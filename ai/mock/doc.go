// Package mock provides test doubles for the ai package.
//
// # Usage
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//	factory := mock.NewMockFactory(embedder)
//	gw, err := gateway.New(cfg, factory.Factory)
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockFactory: Hands out one shared MockEmbedder and records API keys
package mock
