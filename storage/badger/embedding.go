package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) *EmbeddingRepository {
	return &EmbeddingRepository{backend: backend}
}

// PutEmbedding stores an embedding if its content counterpart exists.
// The existence check and the write share one transaction, so a concurrent
// DeleteContent either removes the new embedding too or makes this call conflict.
func (r *EmbeddingRepository) PutEmbedding(ctx context.Context, record *core.EmbeddingRecord) error {
	if err := core.ValidateEmbedding(record); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeContentKey(record.URL)); err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: no content for %s", storage.ErrNotFound, record.URL)
			}
			return err
		}
		if err := tx.Set(makeEmbeddingKey(record.URL), storage.MarshalEmbedding(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEmbedding retrieves the embedding stored for url.
func (r *EmbeddingRepository) GetEmbedding(ctx context.Context, url string) (*core.EmbeddingRecord, error) {
	var result *core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeEmbeddingKey(url), storage.UnmarshalEmbedding)
		return err
	}, false)
	return result, err
}

// ListEmbeddings returns every stored embedding.
func (r *EmbeddingRepository) ListEmbeddings(ctx context.Context) ([]*core.EmbeddingRecord, error) {
	var results []*core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, embeddingPrefix, storage.UnmarshalEmbedding, func(e *core.EmbeddingRecord) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results = append(results, e)
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteEmbeddings removes embeddings by URL.
func (r *EmbeddingRepository) DeleteEmbeddings(ctx context.Context, urls ...string) error {
	if len(urls) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, url := range urls {
			if err := deleteKey(tx, makeEmbeddingKey(url)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
