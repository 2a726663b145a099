// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/luxfi/log"

	"github.com/luxfi/mempool/internal/txlist"
)

// Reorganize implements §4.5: for every sender list, probe the union of
// its processable partition and its promotable unprocessable prefix
// against the external validator, then repartition based on the longest
// leading run of OK verdicts. Re-entrancy is rejected, not queued, per
// §5 ("only one reorganize execution is in flight at any time").
func (p *TransactionPool) Reorganize(ctx context.Context) {
	if !p.reorganizing.CompareAndSwap(false, true) {
		return
	}
	defer p.reorganizing.Store(false)

	start := p.cfg.Clock.Now()
	defer func() { p.metrics.addReorganizeDuration(p.cfg.Clock.Now().Sub(start)) }()

	p.mu.RLock()
	senders := mapset.NewThreadUnsafeSet[Address]()
	for sender := range p.lists {
		senders.Add(sender)
	}
	p.mu.RUnlock()

	for sender := range senders.Iter() {
		p.reorganizeSender(ctx, sender)
	}
}

func (p *TransactionPool) reorganizeSender(ctx context.Context, sender Address) {
	p.mu.Lock()
	list, ok := p.lists[sender]
	if !ok {
		p.mu.Unlock()
		return
	}
	candidates := append(list.GetProcessable(), list.GetPromotable()...)
	if len(candidates) == 0 {
		p.mu.Unlock()
		return
	}
	txs := make([]Transaction, len(candidates))
	ids := make([]ID, len(candidates))
	for i, t := range candidates {
		e, ok := p.all[t.ID]
		if !ok {
			// Cannot happen while holding p.mu: every entry in a sender
			// list has a corresponding p.all record (invariant I1).
			log.Error("mempool: reorganize found a list entry with no matching pool entry", "sender", sender, "id", t.ID)
			p.mu.Unlock()
			panic("mempool: invariant I1 violated: sender list entry has no pool entry")
		}
		txs[i] = e.tx
		ids[i] = t.ID
	}
	p.mu.Unlock()

	applyStart := p.cfg.Clock.Now()
	verdicts, err := p.cfg.ApplyTransactions(ctx, txs)
	p.metrics.addApplyDuration(p.cfg.Clock.Now().Sub(applyStart))

	if err != nil {
		log.Warn("mempool: apply failed during reorganize, treating batch as all-FAIL", "sender", sender, "err", err)
		p.metrics.incApplyFailure()
		verdicts = make([]Verdict, len(txs))
		for i := range verdicts {
			verdicts[i] = Verdict{Status: VerdictFail}
		}
	} else if len(verdicts) != len(txs) {
		log.Error("mempool: apply returned mismatched verdict count during reorganize", "sender", sender, "want", len(txs), "got", len(verdicts))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	list, ok = p.lists[sender]
	if !ok {
		return
	}

	lastOK := -1
	for i, id := range ids {
		if _, present := p.all[id]; !present {
			// Removed by a racing remove/expire while apply was in
			// flight; contiguity is broken here regardless of verdict.
			break
		}
		if verdicts[i].Status != VerdictOK {
			break
		}
		lastOK = i
	}

	target := lastOK + 1
	if target == 0 {
		list.DemoteAll()
	} else {
		list.DemoteAfter(candidates[target-1].Nonce)
	}
	promoteUpTo(list, target)
}

// promoteUpTo grows list's processable partition to exactly target
// entries, promoting from its promotable block as needed. Assumes any
// necessary demotion already happened, so the promotable block starts
// exactly where the processable partition's current frontier ends.
func promoteUpTo(list *txlist.List, target int) {
	for {
		current := list.GetProcessable()
		if len(current) >= target {
			return
		}
		promotable := list.GetPromotable()
		need := target - len(current)
		if len(promotable) == 0 {
			return
		}
		if len(promotable) > need {
			promotable = promotable[:need]
		}
		list.Promote(promotable)
	}
}
