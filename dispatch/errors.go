package dispatch

import "errors"

var (
	// ErrSearcherRequired indicates a nil searcher was passed to NewDispatcher.
	ErrSearcherRequired = errors.New("searcher is required")

	// ErrIngesterRequired indicates a nil ingester was passed to NewDispatcher.
	ErrIngesterRequired = errors.New("ingester is required")

	// ErrKeyManagerRequired indicates a nil key manager was passed to NewDispatcher.
	ErrKeyManagerRequired = errors.New("key manager is required")

	// ErrContentRepositoryRequired indicates a nil content repository was passed to NewDispatcher.
	ErrContentRepositoryRequired = errors.New("content repository is required")

	// ErrSettingsRepositoryRequired indicates a nil settings repository was passed to NewDispatcher.
	ErrSettingsRepositoryRequired = errors.New("settings repository is required")

	// ErrUnknownCommand is reported for a command type with no handler.
	ErrUnknownCommand = errors.New("unknown command type")

	// ErrMissingField is reported when a command lacks a field its type needs.
	ErrMissingField = errors.New("missing required field")
)
