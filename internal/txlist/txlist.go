// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package txlist implements the mempool's per-sender transaction
// list: a nonce-keyed set of pending transactions for one account,
// partitioned into a contiguous "processable" prefix and an
// "unprocessable" tail.
//
// The structure is a generalization of the nonce-sorted account list
// that every pool in the go-ethereum lineage carries (txSortedMap /
// txList in other_examples/210a27cf_internet-com-go-ethereum__core-tx_list.go.go,
// the direct ancestor of the teacher's own core/txpool package), and
// of the append-then-sort.Sort(TxByNonce) idiom
// kevinnguyenai-go-kardia's mainchain/tx_pool/tx_pool.go uses to keep
// a single sender's pending transactions nonce-ordered. Unlike that
// ancestor, which tracks only a single executable/future split fixed
// at reset time, this list exposes an explicit promote/demote
// protocol so the owning pool can re-partition it every reorganize
// cycle against fresh validator verdicts.
package txlist

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Tx is the minimal view of a transaction the list needs to order and
// replace entries: its identity, its sender-scoped sequence number,
// and the fee used to arbitrate same-nonce replacement.
type Tx struct {
	ID    common.Hash
	Nonce uint64
	Fee   *uint256.Int
}

// RejectReason names why Add refused a transaction.
type RejectReason string

const (
	RejectNone                       RejectReason = ""
	RejectPoolFullForAccount         RejectReason = "pool_full_for_account"
	RejectProcessableNonceLocked     RejectReason = "processable_nonce_locked"
	RejectInsufficientReplacementFee RejectReason = "insufficient_replacement_fee"
)

// RemovalReason names why a transaction included in an AddOutcome was
// removed as a side effect of the Add call.
type RemovalReason string

const (
	RemovedNone            RemovalReason = ""
	RemovedReplaced        RemovalReason = "replaced"
	RemovedAccountOverflow RemovalReason = "pool_full_for_account_overflow"
)

// AddOutcome reports the result of Add.
type AddOutcome struct {
	Added         bool
	Reject        RejectReason
	Removed       *Tx
	RemovedReason RemovalReason
}

// List is one sender's pending transactions, keyed by nonce and
// partitioned into a processable prefix and an unprocessable tail.
// Because the processable set is always a contiguous prefix of the
// ascending nonce order (invariant I4), it is represented as a count
// rather than an explicit nonce set: the first processableCount
// entries of the sorted nonce order are processable, everything after
// is not. This makes the invariant structurally impossible to
// violate instead of merely documented.
type List struct {
	byNonce          map[uint64]Tx
	nonces           []uint64 // kept sorted ascending
	processableCount int
}

// New returns an empty per-sender transaction list.
func New() *List {
	return &List{byNonce: make(map[uint64]Tx)}
}

// Len returns the number of transactions held, processable and
// unprocessable combined.
func (l *List) Len() int { return len(l.byNonce) }

// Empty reports whether the list holds no transactions.
func (l *List) Empty() bool { return len(l.byNonce) == 0 }

// Get retrieves the transaction at nonce, if any.
func (l *List) Get(nonce uint64) (Tx, bool) {
	tx, ok := l.byNonce[nonce]
	return tx, ok
}

// MaxNonce returns the highest nonce currently held.
func (l *List) MaxNonce() (uint64, bool) {
	if len(l.nonces) == 0 {
		return 0, false
	}
	return l.nonces[len(l.nonces)-1], true
}

// Add tries to insert tx into the list. See spec §4.2 for the full
// admission-rule semantics implemented here.
func (l *List) Add(tx Tx, processable bool, maxPerAccount int, minReplacementFeeDiff *uint256.Int) AddOutcome {
	if incumbent, exists := l.byNonce[tx.Nonce]; exists {
		return l.addReplacement(tx, incumbent, minReplacementFeeDiff)
	}

	if len(l.byNonce) < maxPerAccount {
		l.insert(tx, processable)
		return AddOutcome{Added: true}
	}

	// At capacity and this is a brand new nonce: rule 2 rejects outright
	// if it would extend the frontier past every existing nonce.
	maxExisting, _ := l.MaxNonce()
	if tx.Nonce > maxExisting {
		return AddOutcome{Reject: RejectPoolFullForAccount}
	}

	// Rule 4: the nonce fills a gap below the current maximum even
	// though the account is already at capacity. Insert it, then evict
	// the highest-nonce unprocessable entry to restore the cap.
	l.insert(tx, processable)
	victimNonce, ok := l.highestUnprocessableNonce()
	if !ok {
		// Every existing entry is processable; there is nothing
		// evictable without breaking the processable prefix. Undo the
		// insertion and reject rather than violate invariant I3.
		l.removeAt(tx.Nonce)
		return AddOutcome{Reject: RejectPoolFullForAccount}
	}
	victim := l.byNonce[victimNonce]
	l.removeAt(victimNonce)
	return AddOutcome{Added: true, Removed: &victim, RemovedReason: RemovedAccountOverflow}
}

func (l *List) addReplacement(tx, incumbent Tx, minReplacementFeeDiff *uint256.Int) AddOutcome {
	if l.IsProcessable(incumbent.Nonce) {
		return AddOutcome{Reject: RejectProcessableNonceLocked}
	}
	threshold := new(uint256.Int).Add(incumbent.Fee, minReplacementFeeDiff)
	if tx.Fee.Lt(threshold) {
		return AddOutcome{Reject: RejectInsufficientReplacementFee}
	}
	l.byNonce[tx.Nonce] = tx
	return AddOutcome{Added: true, Removed: &incumbent, RemovedReason: RemovedReplaced}
}

// Remove deletes the transaction at nonce, demoting it out of the
// processable partition first if it was a member. Returns false if
// nonce was not present.
func (l *List) Remove(nonce uint64) bool {
	if _, ok := l.byNonce[nonce]; !ok {
		return false
	}
	l.removeAt(nonce)
	return true
}

// Promote marks txs as processable. Callers pass what GetPromotable
// returns, or some leading sub-slice of it. Promote panics if txs is
// longer than the unprocessable partition or if its nonces are not, in
// order, the first len(txs) unprocessable nonces; it does not check that
// those nonces are numerically consecutive with the frontier.
func (l *List) Promote(txs []Tx) {
	if len(txs) == 0 {
		return
	}
	if l.processableCount+len(txs) > len(l.nonces) {
		panic("txlist: Promote called with more transactions than are available to promote")
	}
	expected := l.nonces[l.processableCount : l.processableCount+len(txs)]
	for i, tx := range txs {
		if tx.Nonce != expected[i] {
			panic("txlist: Promote called with a non-contiguous nonce sequence")
		}
	}
	l.processableCount += len(txs)
}

// DemoteAfter moves every processable entry with nonce > bound back
// into the unprocessable partition.
func (l *List) DemoteAfter(bound uint64) {
	for l.processableCount > 0 && l.nonces[l.processableCount-1] > bound {
		l.processableCount--
	}
}

// DemoteAll moves every processable entry back to unprocessable.
func (l *List) DemoteAll() { l.processableCount = 0 }

// GetProcessable returns the processable partition, ascending by
// nonce.
func (l *List) GetProcessable() []Tx {
	return l.slice(0, l.processableCount)
}

// GetUnprocessable returns the unprocessable partition, ascending by
// nonce.
func (l *List) GetUnprocessable() []Tx {
	return l.slice(l.processableCount, len(l.nonces))
}

// GetPromotable returns the contiguous unprocessable prefix that
// immediately follows the current processable frontier: the block of
// entries eligible to be probed for promotion on the next reorganize
// pass.
func (l *List) GetPromotable() []Tx {
	end := l.processableCount
	if end >= len(l.nonces) {
		return nil
	}
	if l.processableCount > 0 && l.nonces[end] != l.nonces[l.processableCount-1]+1 {
		// The first unprocessable entry does not immediately follow the
		// processable frontier; nothing is promotable yet.
		return nil
	}
	end++
	for end < len(l.nonces) && l.nonces[end] == l.nonces[end-1]+1 {
		end++
	}
	return l.slice(l.processableCount, end)
}

// HighestProcessable returns the processable entry with the highest
// nonce -- the per-sender "frontier" transaction used by the pool's
// cross-sender eviction (spec §4.4b).
func (l *List) HighestProcessable() (Tx, bool) {
	if l.processableCount == 0 {
		return Tx{}, false
	}
	return l.byNonce[l.nonces[l.processableCount-1]], true
}

// IsProcessable reports whether nonce is currently in the processable
// partition. Returns false for a nonce the list does not hold at all.
func (l *List) IsProcessable(nonce uint64) bool {
	pos := l.position(nonce)
	return pos >= 0 && pos < l.processableCount
}

func (l *List) position(nonce uint64) int {
	i := sort.Search(len(l.nonces), func(i int) bool { return l.nonces[i] >= nonce })
	if i < len(l.nonces) && l.nonces[i] == nonce {
		return i
	}
	return -1
}

func (l *List) highestUnprocessableNonce() (uint64, bool) {
	if l.processableCount >= len(l.nonces) {
		return 0, false
	}
	return l.nonces[len(l.nonces)-1], true
}

func (l *List) insert(tx Tx, processable bool) {
	l.byNonce[tx.Nonce] = tx
	pos := sort.Search(len(l.nonces), func(i int) bool { return l.nonces[i] >= tx.Nonce })
	l.nonces = append(l.nonces, 0)
	copy(l.nonces[pos+1:], l.nonces[pos:])
	l.nonces[pos] = tx.Nonce

	switch {
	case processable && pos == l.processableCount:
		l.processableCount++
	case pos < l.processableCount:
		// A new, unprocessable entry landed inside what was the
		// processable prefix (its nonce is below the current processable
		// frontier; reachable from both the under-cap and the gap-filling
		// paths in Add). Invariant I4 requires the processable partition
		// to be a contiguous prefix, so everything from this new entry
		// onward demotes back to unprocessable.
		l.processableCount = pos
	}
}

func (l *List) removeAt(nonce uint64) {
	pos := l.position(nonce)
	if pos < 0 {
		return
	}
	delete(l.byNonce, nonce)
	l.nonces = append(l.nonces[:pos], l.nonces[pos+1:]...)
	if pos < l.processableCount {
		l.processableCount--
	}
}

func (l *List) slice(from, to int) []Tx {
	if from >= to {
		return nil
	}
	out := make([]Tx, 0, to-from)
	for _, n := range l.nonces[from:to] {
		out = append(out, l.byNonce[n])
	}
	return out
}
