package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/storage"
)

// ContentRepository implements storage.ContentRepository for BadgerDB.
type ContentRepository struct {
	backend *Backend
}

var _ storage.ContentRepository = (*ContentRepository)(nil)

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(backend *Backend) *ContentRepository {
	return &ContentRepository{backend: backend}
}

// GetContent retrieves the content stored for url.
func (r *ContentRepository) GetContent(ctx context.Context, url string) (*core.ExtractedContent, error) {
	var result *core.ExtractedContent
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeContentKey(url), storage.UnmarshalContent)
		return err
	}, false)
	return result, err
}

// PutContent stores a content record, replacing any previous one for its URL.
func (r *ContentRepository) PutContent(ctx context.Context, content *core.ExtractedContent) error {
	if err := core.ValidateContent(content); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeContentKey(content.URL), storage.MarshalContent(content)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// MarkProcessed flags the content for url as embedded.
func (r *ContentRepository) MarkProcessed(ctx context.Context, url string, at time.Time) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeContentKey(url)
		content, err := readValue(tx, key, storage.UnmarshalContent)
		if err != nil {
			return err
		}
		content.Processed = true
		content.EmbeddingGeneratedAt = at
		if err := tx.Set(key, storage.MarshalContent(content)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListContent returns every stored content record.
func (r *ContentRepository) ListContent(ctx context.Context) ([]*core.ExtractedContent, error) {
	var results []*core.ExtractedContent
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, contentPrefix, storage.UnmarshalContent, func(c *core.ExtractedContent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results = append(results, c)
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteContent removes content records along with their embeddings and screenshots.
func (r *ContentRepository) DeleteContent(ctx context.Context, urls ...string) error {
	if len(urls) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, url := range urls {
			for _, key := range [][]byte{makeContentKey(url), makeEmbeddingKey(url), makeScreenshotKey(url)} {
				if err := deleteKey(tx, key); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// CountContent returns the number of stored content records.
func (r *ContentRepository) CountContent(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(contentPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}
