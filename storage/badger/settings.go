package badger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/storage"
)

// maxConflictRetries bounds how often IncrementStats retries a transaction
// that lost a write conflict.
const maxConflictRetries = 16

// SettingsRepository implements storage.SettingsRepository for BadgerDB.
type SettingsRepository struct {
	backend *Backend
	statsMu sync.Mutex // serializes in-process increments
}

var _ storage.SettingsRepository = (*SettingsRepository)(nil)

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(backend *Backend) *SettingsRepository {
	return &SettingsRepository{
		backend: backend,
	}
}

// LoadSettings returns the saved settings or the defaults when none exist.
func (r *SettingsRepository) LoadSettings(ctx context.Context) (*core.Settings, error) {
	var settings *core.Settings
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		settings, err = readValue(tx, []byte(settingsKey), storage.UnmarshalSettings)
		if errors.Is(err, storage.ErrNotFound) {
			settings = core.DefaultSettings()
			return nil
		}
		return err
	}, false)
	return settings, err
}

// SaveSettings persists the settings.
func (r *SettingsRepository) SaveSettings(ctx context.Context, settings *core.Settings) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(settingsKey), storage.MarshalSettings(settings)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadStats returns the saved stats or zero stats when none exist.
func (r *SettingsRepository) LoadStats(ctx context.Context) (*core.Stats, error) {
	var stats *core.Stats
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		stats, err = readValue(tx, []byte(statsKey), storage.UnmarshalStats)
		if errors.Is(err, storage.ErrNotFound) {
			stats = &core.Stats{}
			return nil
		}
		return err
	}, false)
	return stats, err
}

// SaveStats persists the stats.
func (r *SettingsRepository) SaveStats(ctx context.Context, stats *core.Stats) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(statsKey), storage.MarshalStats(stats)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// IncrementStats reads and updates the stats in a single write transaction,
// retrying when a concurrent writer causes a conflict.
func (r *SettingsRepository) IncrementStats(ctx context.Context, pages int, at time.Time) (*core.Stats, error) {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()

	var stats *core.Stats
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		err = r.backend.WithTx(func(tx *badger.Txn) error {
			current, readErr := readValue(tx, []byte(statsKey), storage.UnmarshalStats)
			if errors.Is(readErr, storage.ErrNotFound) {
				current, readErr = &core.Stats{}, nil
			}
			if readErr != nil {
				return readErr
			}
			current.TotalPages += pages
			current.LastUpdate = at
			if setErr := tx.Set([]byte(statsKey), storage.MarshalStats(current)); setErr != nil {
				return setErr
			}
			if commitErr := tx.Commit(); commitErr != nil {
				return commitErr
			}
			stats = current
			return nil
		}, true)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}
