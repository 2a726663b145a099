// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package feeheap implements the mempool's fee-priority ordering
// structure: a min-heap over (fee_priority, id) pairs with an
// auxiliary id->position index so that an arbitrary entry can be
// removed in O(log n) instead of the O(n) scan a plain
// container/heap.Interface would otherwise require.
//
// The design descends from the price-sorted heap used throughout the
// go-ethereum transaction pool lineage (priceHeap / txPricedList), but
// that structure tolerates "stale" entries and periodically re-heaps
// rather than removing eagerly, because its eviction decisions are
// advisory there. The mempool's capacity arbitration and eviction
// scans need an exact peek-min and an exact remove(id), so this
// implementation keeps every entry's heap position current instead,
// the same way the standard library's heap.Interface example
// (container/heap's PriorityQueue) tracks an index field per item.
package feeheap

import (
	"container/heap"
	"sort"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Entry is a single (fee_priority, id) record tracked by the queue.
// ReceivedAt breaks ties between entries of equal priority.
type Entry struct {
	ID         common.Hash
	Priority   *uint256.Int
	ReceivedAt time.Time

	index int // current position in the backing heap; maintained internally
}

// Queue is a min-ordered priority structure over Entry values, keyed
// by Priority and deduplicated by ID. It is not safe for concurrent
// use; callers serialize access (the mempool guards it with its own
// mutex).
type Queue struct {
	items   entryHeap
	entries map[common.Hash]*Entry
}

// New returns an empty fee-priority queue.
func New() *Queue {
	return &Queue{entries: make(map[common.Hash]*Entry)}
}

// Len returns the number of entries currently tracked.
func (q *Queue) Len() int { return len(q.items) }

// Contains reports whether id is currently tracked.
func (q *Queue) Contains(id common.Hash) bool {
	_, ok := q.entries[id]
	return ok
}

// Insert adds a new entry. If id is already tracked, its priority and
// received-at timestamp are updated in place instead of creating a
// duplicate; there is never more than one entry per id.
func (q *Queue) Insert(id common.Hash, priority *uint256.Int, receivedAt time.Time) {
	if e, ok := q.entries[id]; ok {
		e.Priority = priority
		e.ReceivedAt = receivedAt
		heap.Fix(&q.items, e.index)
		return
	}
	e := &Entry{ID: id, Priority: priority, ReceivedAt: receivedAt}
	q.entries[id] = e
	heap.Push(&q.items, e)
}

// Remove deletes id from the queue. It returns false if id was not
// present, matching spec: removal of a non-present id is a no-op.
func (q *Queue) Remove(id common.Hash) bool {
	e, ok := q.entries[id]
	if !ok {
		return false
	}
	heap.Remove(&q.items, e.index)
	delete(q.entries, id)
	return true
}

// PeekMin returns the minimum-priority entry without removing it.
func (q *Queue) PeekMin() (Entry, bool) {
	if len(q.items) == 0 {
		return Entry{}, false
	}
	return *q.items[0], true
}

// AscendingIDs returns every tracked id ordered by ascending priority
// (ties broken the same way the heap breaks them: a newer entry sorts
// before an older, equal-priority one). It is built by sorting a
// snapshot and is O(n log n); callers use it only for eviction scans,
// which are bounded by pool capacity.
func (q *Queue) AscendingIDs() []common.Hash {
	snapshot := make([]*Entry, len(q.items))
	copy(snapshot, q.items)
	sort.Slice(snapshot, func(i, j int) bool { return less(snapshot[i], snapshot[j]) })

	ids := make([]common.Hash, len(snapshot))
	for i, e := range snapshot {
		ids[i] = e.ID
	}
	return ids
}

// less implements the queue's total order: ascending fee_priority,
// with equal-priority entries broken by received_at so that the newer
// entry sorts first (and is therefore evicted before an older,
// equal-priority resident, per spec: "older loses in eviction").
func less(a, b *Entry) bool {
	switch a.Priority.Cmp(b.Priority) {
	case -1:
		return true
	case 1:
		return false
	}
	return a.ReceivedAt.After(b.ReceivedAt)
}

// entryHeap is the container/heap.Interface backing store.
type entryHeap []*Entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return less(h[i], h[j]) }

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x interface{}) {
	e := x.(*Entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
