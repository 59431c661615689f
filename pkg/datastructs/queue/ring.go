package queue

import (
	"math"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var _ Queue[int] = (*RingQueue[int])(nil)

// RingQueue is a FIFO queue backed by a circular buffer that doubles when full.
//
// Slot positions are derived from monotonically increasing push and pop
// counters rather than stored head and tail indices, so a full buffer and an
// empty one never look alike. Counters are uint64 and wrap silently; reaching
// 2^64 operations without a growth in between is treated as unreachable.
//
// The zero value is an empty queue with no storage, ready to use.
// It is NOT thread-safe.
type RingQueue[T any] struct {
	buf       []T
	capacity  int
	pushCount uint64 // total inserts since the last rebase
	popCount  uint64 // total removals since the last rebase

	logger      *zap.Logger
	maxCapacity int
}

// New creates an empty RingQueue without allocating storage.
func New[T any](opts ...Option) *RingQueue[T] {
	cfg := newConfig(opts)
	return &RingQueue[T]{
		logger:      cfg.logger,
		maxCapacity: cfg.maxCapacity,
	}
}

// NewWithCapacity creates an empty RingQueue with n preallocated slots.
// A zero n allocates nothing. A negative n panics.
func NewWithCapacity[T any](n int, opts ...Option) (*RingQueue[T], error) {
	if n < 0 {
		panic("queue: negative capacity")
	}

	q := New[T](opts...)
	if n == 0 {
		return q, nil
	}

	buf, err := q.allocate(n)
	if err != nil {
		return nil, err
	}
	q.buf = buf
	q.capacity = n
	return q, nil
}

// IsEmpty reports whether the queue holds no items.
func (q *RingQueue[T]) IsEmpty() bool {
	return q.pushCount == q.popCount
}

// Size returns the number of queued items.
func (q *RingQueue[T]) Size() int {
	return int(q.pushCount - q.popCount)
}

// Capacity returns the number of allocated slots.
func (q *RingQueue[T]) Capacity() int {
	return q.capacity
}

// Clear drops all items by resetting the counters.
// Storage is neither released nor zeroed: old values stay in their slots,
// unreachable through the queue but still visible to the garbage collector
// until overwritten.
func (q *RingQueue[T]) Clear() {
	q.pushCount = 0
	q.popCount = 0
}

// Insert appends item at the tail, doubling the buffer first if it is full.
// The only possible error is ErrAllocation from that growth, in which case
// item is not inserted.
func (q *RingQueue[T]) Insert(item T) error {
	if q.capacity == 0 || q.Size() == q.capacity {
		if err := q.grow(); err != nil {
			return err
		}
	}

	q.buf[q.pushCount%uint64(q.capacity)] = item
	q.pushCount++
	return nil
}

// RemoveFront discards the item at the head.
func (q *RingQueue[T]) RemoveFront() error {
	if q.IsEmpty() {
		return ErrEmptyQueue
	}
	q.popCount++
	return nil
}

// Front returns a copy of the item at the head.
func (q *RingQueue[T]) Front() (T, error) {
	if q.IsEmpty() {
		var zero T
		return zero, ErrEmptyQueue
	}
	return q.buf[q.headSlot()], nil
}

// Back returns a copy of the item at the tail.
func (q *RingQueue[T]) Back() (T, error) {
	if q.IsEmpty() {
		var zero T
		return zero, ErrEmptyQueue
	}
	return q.buf[q.tailSlot()], nil
}

// FrontRef returns a pointer to the head slot so the item can be modified in place.
// The pointer is valid until the next Insert that grows the buffer or the next
// CopyFrom into q; after that it refers to the abandoned buffer. After Clear,
// later inserts reuse the slots, so the pointer then aliases a different item.
func (q *RingQueue[T]) FrontRef() (*T, error) {
	if q.IsEmpty() {
		return nil, ErrEmptyQueue
	}
	return &q.buf[q.headSlot()], nil
}

// BackRef returns a pointer to the tail slot.
// It is subject to the same invalidation rules as FrontRef.
func (q *RingQueue[T]) BackRef() (*T, error) {
	if q.IsEmpty() {
		return nil, ErrEmptyQueue
	}
	return &q.buf[q.tailSlot()], nil
}

// Clone returns an independent copy of q, including unused slots and q's options.
func (q *RingQueue[T]) Clone() (*RingQueue[T], error) {
	dst := &RingQueue[T]{
		logger:      q.logger,
		maxCapacity: q.maxCapacity,
	}
	if err := dst.CopyFrom(q); err != nil {
		return nil, err
	}
	return dst, nil
}

// CopyFrom replaces the contents of q with a copy of src.
// Every slot of src is copied positionally along with its counters and capacity.
// The new buffer is fully built before q is touched, so on ErrAllocation q is
// unchanged. q keeps its own logger and capacity limit.
func (q *RingQueue[T]) CopyFrom(src *RingQueue[T]) error {
	if src == nil {
		panic("queue: copy from nil queue")
	}

	var buf []T
	if src.capacity > 0 {
		var err error
		if buf, err = q.allocate(src.capacity); err != nil {
			return err
		}
		copy(buf, src.buf)
	}

	q.pushCount = src.pushCount
	q.popCount = src.popCount
	q.capacity = src.capacity
	q.buf = buf
	return nil
}

// headSlot returns the physical index of the head. Valid only when not empty.
func (q *RingQueue[T]) headSlot() int {
	return int(q.popCount % uint64(q.capacity))
}

// tailSlot returns the physical index of the tail. Valid only when not empty.
func (q *RingQueue[T]) tailSlot() int {
	return int((q.pushCount - 1) % uint64(q.capacity))
}

// grow doubles the buffer, or allocates a single slot if there is none.
// Items are copied in logical order to the start of the new buffer and the
// counters are rebased so that the head sits at slot 0.
func (q *RingQueue[T]) grow() error {
	if q.capacity == 0 {
		buf, err := q.allocate(1)
		if err != nil {
			return err
		}
		q.buf = buf
		q.capacity = 1
		q.log().Debug("queue allocated", zap.Int("capacity", 1))
		return nil
	}

	oldCap := q.capacity
	if oldCap > math.MaxInt/2 {
		q.log().Warn("queue capacity overflow", zap.Int("capacity", oldCap))
		return errors.Wrapf(ErrAllocation, "double capacity %d", oldCap)
	}
	newCap := oldCap * 2

	newBuf, err := q.allocate(newCap)
	if err != nil {
		return err
	}

	head := q.headSlot()
	for i := 0; i < oldCap; i++ {
		newBuf[i] = q.buf[(head+i)%oldCap]
	}

	q.buf = newBuf
	q.popCount = 0
	q.pushCount = uint64(oldCap)
	q.capacity = newCap

	q.log().Debug("queue grown",
		zap.Int("from", oldCap),
		zap.Int("to", newCap),
		zap.Int("size", q.Size()),
	)
	return nil
}

// allocate returns a zeroed slice of n slots, or ErrAllocation if n exceeds
// the capacity limit or the runtime rejects the size. An actual out-of-memory
// condition is fatal in Go and cannot be reported here.
func (q *RingQueue[T]) allocate(n int) (buf []T, err error) {
	if q.maxCapacity > 0 && n > q.maxCapacity {
		q.log().Warn("queue capacity limit reached",
			zap.Int("requested", n),
			zap.Int("limit", q.maxCapacity),
		)
		return nil, errors.Wrapf(ErrAllocation, "%d slots exceeds limit %d", n, q.maxCapacity)
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		rerr, ok := r.(runtime.Error)
		if !ok {
			panic(r)
		}
		q.log().Warn("queue allocation failed", zap.Int("requested", n), zap.Error(rerr))
		buf = nil
		err = errors.Wrapf(ErrAllocation, "%d slots: %v", n, rerr)
	}()

	return make([]T, n), nil
}

func (q *RingQueue[T]) log() *zap.Logger {
	if q.logger == nil {
		return nopLogger
	}
	return q.logger
}
