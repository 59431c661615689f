package queue

import "errors"

var (
	// ErrEmptyQueue is returned when reading or removing from an empty queue.
	ErrEmptyQueue = errors.New("queue is empty")

	// ErrAllocation is returned when backing storage cannot be obtained.
	// The queue is left in its previous state.
	ErrAllocation = errors.New("queue: unable to allocate buffer")

	// ErrInvalidConfig is returned when queue settings hold out-of-range values.
	ErrInvalidConfig = errors.New("queue: invalid config")
)
