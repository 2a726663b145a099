// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"bytes"

	"github.com/holiman/uint256"
	"github.com/luxfi/log"
)

// evictUnprocessable implements §4.4a: scan the fee-priority queue
// ascending and remove the first transaction whose sender-list marks it
// unprocessable. The sender's internal/txlist.List is asked directly
// rather than trusting any cached flag on entry, since only the list
// itself is updated by every repartitioning path (Add's direct-promotion
// fast path and Reorganize's Promote/DemoteAfter/DemoteAll). Callers hold
// p.mu.
func (p *TransactionPool) evictUnprocessable() bool {
	for _, id := range p.queue.AscendingIDs() {
		e, ok := p.all[id]
		if !ok {
			continue
		}
		list, ok := p.lists[e.sender]
		if !ok || list.IsProcessable(e.tx.Nonce()) {
			continue
		}
		p.deregister(id, CausePoolFull)
		log.Trace("mempool: evicted unprocessable transaction for capacity", "id", id)
		return true
	}
	return false
}

// evictProcessable implements §4.4b: among every sender's processable
// frontier (the highest-nonce processable transaction), evict the one
// with the minimum fee_priority, breaking ties by lexicographically
// smallest sender address for determinism (§9's Open Question
// resolution). Callers hold p.mu.
func (p *TransactionPool) evictProcessable() bool {
	var (
		found        bool
		bestID       ID
		bestSender   Address
		bestPriority *uint256.Int
	)

	for sender, list := range p.lists {
		tx, ok := list.HighestProcessable()
		if !ok {
			continue
		}
		e, ok := p.all[tx.ID]
		if !ok {
			continue
		}
		if !found {
			found, bestID, bestSender, bestPriority = true, tx.ID, sender, e.feePriority
			continue
		}
		if cmp := e.feePriority.Cmp(bestPriority); cmp < 0 || (cmp == 0 && bytes.Compare(sender.Bytes(), bestSender.Bytes()) < 0) {
			bestID, bestSender, bestPriority = tx.ID, sender, e.feePriority
		}
	}
	if !found {
		return false
	}
	p.deregister(bestID, CausePoolFull)
	log.Trace("mempool: evicted processable frontier transaction for capacity", "id", bestID, "sender", bestSender)
	return true
}
