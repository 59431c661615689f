package queue

import (
	"fmt"
	"math/rand"
	"testing"

	eapache "github.com/eapache/queue"
	"golang.org/x/sync/errgroup"
)

const (
	propertySeeds = 16
	propertyOps   = 5000
)

// headSlotTwoBranch is the head rule that special-cases a single queued item
// by reading the tail slot. headSlot must agree with it on every reachable state.
func headSlotTwoBranch[T any](q *RingQueue[T]) int {
	if q.Size() == 1 {
		return q.tailSlot()
	}
	return int(q.popCount % uint64(q.capacity))
}

// checkAgainstReference applies a random insert/remove mix to a RingQueue and
// to an unbounded reference queue, comparing observable state after each step.
func checkAgainstReference(seed int64, initCap int) error {
	rng := rand.New(rand.NewSource(seed))
	q, err := NewWithCapacity[int](initCap)
	if err != nil {
		return err
	}
	ref := eapache.New()

	inserts, removes := 0, 0
	for i := 0; i < propertyOps; i++ {
		// Bias towards inserts so the buffer keeps growing and wrapping.
		if rng.Intn(5) < 3 {
			prevCap := q.Capacity()
			wasFull := q.Size() == prevCap
			v := rng.Int()
			if err := q.Insert(v); err != nil {
				return fmt.Errorf("op %d: Insert() error = %w", i, err)
			}
			ref.Add(v)
			inserts++

			switch {
			case prevCap == 0 && q.Capacity() != 1:
				return fmt.Errorf("op %d: capacity %d after first growth; want 1", i, q.Capacity())
			case prevCap > 0 && wasFull && q.Capacity() != 2*prevCap:
				return fmt.Errorf("op %d: capacity %d after growth; want %d", i, q.Capacity(), 2*prevCap)
			case prevCap > 0 && !wasFull && q.Capacity() != prevCap:
				return fmt.Errorf("op %d: capacity changed %d -> %d without growth", i, prevCap, q.Capacity())
			}
		} else {
			err := q.RemoveFront()
			if ref.Length() == 0 {
				if err != ErrEmptyQueue {
					return fmt.Errorf("op %d: RemoveFront() on empty error = %v", i, err)
				}
			} else {
				if err != nil {
					return fmt.Errorf("op %d: RemoveFront() error = %w", i, err)
				}
				ref.Remove()
				removes++
			}
		}

		if q.Size() != inserts-removes || q.Size() != ref.Length() {
			return fmt.Errorf("op %d: Size() = %d; want %d", i, q.Size(), ref.Length())
		}
		if q.IsEmpty() != (q.Size() == 0) {
			return fmt.Errorf("op %d: IsEmpty() = %v with size %d", i, q.IsEmpty(), q.Size())
		}
		if q.Size() > q.Capacity() {
			return fmt.Errorf("op %d: size %d exceeds capacity %d", i, q.Size(), q.Capacity())
		}
		if q.IsEmpty() {
			continue
		}

		if q.headSlot() != headSlotTwoBranch(q) {
			return fmt.Errorf("op %d: head slot %d; two-branch rule gives %d", i, q.headSlot(), headSlotTwoBranch(q))
		}
		front, _ := q.Front()
		if want := ref.Peek().(int); front != want {
			return fmt.Errorf("op %d: Front() = %d; want %d", i, front, want)
		}
		back, _ := q.Back()
		if want := ref.Get(ref.Length() - 1).(int); back != want {
			return fmt.Errorf("op %d: Back() = %d; want %d", i, back, want)
		}
	}

	// Remaining items must come out in insertion order.
	for !q.IsEmpty() {
		front, _ := q.Front()
		if want := ref.Remove().(int); front != want {
			return fmt.Errorf("drain: Front() = %d; want %d", front, want)
		}
		_ = q.RemoveFront()
	}
	if ref.Length() != 0 {
		return fmt.Errorf("drain: reference still holds %d items", ref.Length())
	}
	return nil
}

func TestRingQueue_PropertyBased(t *testing.T) {
	for _, initCap := range []int{0, 1, 3, 4} {
		t.Run(fmt.Sprintf("cap_%d", initCap), func(t *testing.T) {
			// Each goroutine owns its queue; RingQueue itself is not shared.
			var g errgroup.Group
			for seed := int64(0); seed < propertySeeds; seed++ {
				g.Go(func() error {
					if err := checkAgainstReference(seed, initCap); err != nil {
						return fmt.Errorf("seed %d: %w", seed, err)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestRingQueue_FIFOOrdering(t *testing.T) {
	for _, n := range []int{1, 2, 7, 64, 1000} {
		t.Run(fmt.Sprintf("n_%d", n), func(t *testing.T) {
			q := New[int]()
			want := make([]int, n)
			for i := range want {
				want[i] = i * 3
				mustInsert(t, q, want[i])
			}
			if got := drain(t, q); !equalInts(got, want) {
				t.Errorf("drained %d items out of order", len(got))
			}
		})
	}
}

func TestRingQueue_HeadRuleAfterEveryGrowth(t *testing.T) {
	// Exhaustively walk small capacities through every rotation before a grow.
	for capacity := 1; capacity <= 8; capacity++ {
		for shift := 0; shift < capacity; shift++ {
			q, _ := NewWithCapacity[int](capacity)
			for i := 0; i < shift; i++ {
				mustInsert(t, q, -1)
				_ = q.RemoveFront()
			}
			for i := 0; i <= capacity; i++ {
				mustInsert(t, q, i)
				if q.headSlot() != headSlotTwoBranch(q) {
					t.Fatalf("cap %d shift %d insert %d: head slot mismatch", capacity, shift, i)
				}
			}
			if q.Capacity() != 2*capacity {
				t.Fatalf("cap %d shift %d: Capacity() = %d; want %d", capacity, shift, q.Capacity(), 2*capacity)
			}
			want := make([]int, capacity+1)
			for i := range want {
				want[i] = i
			}
			if got := drain(t, q); !equalInts(got, want) {
				t.Fatalf("cap %d shift %d: drained %v; want %v", capacity, shift, got, want)
			}
		}
	}
}
