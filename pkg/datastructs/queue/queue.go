package queue

// Queue is a generic interface for growable FIFO queues.
type Queue[T any] interface {
	// Insert appends an item at the tail, growing storage if needed.
	Insert(item T) error

	// RemoveFront discards the item at the head.
	// Returns ErrEmptyQueue if the queue is empty.
	RemoveFront() error

	// Front returns the item at the head.
	Front() (T, error)

	// Back returns the item at the tail.
	Back() (T, error)

	// Size returns the number of queued items.
	Size() int

	// IsEmpty reports whether Size is zero.
	IsEmpty() bool

	// Capacity returns the number of allocated slots.
	Capacity() int

	// Clear drops all items without releasing storage.
	Clear()
}
