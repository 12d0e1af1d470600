package server

import "errors"

var (
	// ErrDispatcherRequired indicates a nil dispatcher was passed to New.
	ErrDispatcherRequired = errors.New("dispatcher is required")

	// ErrSweeperRequired indicates a nil sweeper was passed to NewScheduler.
	ErrSweeperRequired = errors.New("sweeper is required")
)
