package domain

import "errors"

var (
	// ErrLockHeld is returned by LockManager.Acquire when another holder
	// owns the key.
	ErrLockHeld = errors.New("lock already held")

	// ErrCycleInProgress is returned when a refresh is requested while a
	// cycle is already running.
	ErrCycleInProgress = errors.New("refresh cycle already in progress")
)
