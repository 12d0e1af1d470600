package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/storage"
)

// ScreenshotRepository implements storage.ScreenshotRepository for BadgerDB.
type ScreenshotRepository struct {
	backend *Backend
}

var _ storage.ScreenshotRepository = (*ScreenshotRepository)(nil)

// NewScreenshotRepository creates a new ScreenshotRepository.
func NewScreenshotRepository(backend *Backend) *ScreenshotRepository {
	return &ScreenshotRepository{backend: backend}
}

func (r *ScreenshotRepository) PutScreenshot(ctx context.Context, shot *core.Screenshot) error {
	if shot == nil || shot.URL == "" {
		return core.ErrEmptyURL
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeScreenshotKey(shot.URL), storage.MarshalScreenshot(shot)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func (r *ScreenshotRepository) GetScreenshot(ctx context.Context, url string) (*core.Screenshot, error) {
	var result *core.Screenshot
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeScreenshotKey(url), storage.UnmarshalScreenshot)
		return err
	}, false)
	return result, err
}

func (r *ScreenshotRepository) ListScreenshots(ctx context.Context) ([]*core.Screenshot, error) {
	var results []*core.Screenshot
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, screenshotPrefix, storage.UnmarshalScreenshot, func(s *core.Screenshot) error {
			results = append(results, s)
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ScreenshotRepository) DeleteScreenshots(ctx context.Context, urls ...string) error {
	if len(urls) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, url := range urls {
			if err := deleteKey(tx, makeScreenshotKey(url)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
