package reservation

import (
	"container/heap"
	"sort"
	"sync"
)

// byPriority orders reservations for the waitlist: priority number
// ascending, then creation time ascending, then insertion sequence. The
// sequence keeps FIFO stable when two reservations share a timestamp.
type byPriority []*Reservation

func (h byPriority) Len() int { return len(h) }

func (h byPriority) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	if !h[i].createdAt.Equal(h[j].createdAt) {
		return h[i].createdAt.Before(h[j].createdAt)
	}
	return h[i].seq < h[j].seq
}

func (h byPriority) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *byPriority) Push(x any) { *h = append(*h, x.(*Reservation)) }

func (h *byPriority) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// waitlist is one per-vehicle-type priority queue. Its mutex makes
// peek-then-pop atomic for the promotion sweep; at most one consumer pops a
// given head. Lock order: a waitlist lock is always taken before the
// manager's table lock.
type waitlist struct {
	mu    sync.Mutex
	items byPriority
}

func (w *waitlist) push(r *Reservation) {
	heap.Push(&w.items, r)
}

func (w *waitlist) peek() *Reservation {
	if len(w.items) == 0 {
		return nil
	}
	return w.items[0]
}

func (w *waitlist) pop() *Reservation {
	if len(w.items) == 0 {
		return nil
	}
	return heap.Pop(&w.items).(*Reservation)
}

func (w *waitlist) remove(id string) bool {
	for i, r := range w.items {
		if r.id == id {
			heap.Remove(&w.items, i)
			return true
		}
	}
	return false
}

func (w *waitlist) size() int { return len(w.items) }

// position returns the 1-based queue position of the reservation in pop
// order, or 0 when absent.
func (w *waitlist) position(id string) int {
	sorted := append(byPriority(nil), w.items...)
	sort.Sort(sorted)
	for i, r := range sorted {
		if r.id == id {
			return i + 1
		}
	}
	return 0
}
