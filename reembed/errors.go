package reembed

import "errors"

var (
	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrContentRepositoryRequired is returned when no content repository is provided.
	ErrContentRepositoryRequired = errors.New("content repository required")
)
