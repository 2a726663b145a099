// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mempool implements the transaction mempool of a delegated
// proof-of-stake node: admission, fee-priority ordering, per-sender
// nonce sequencing, eviction, periodic reorganization against an
// external validator, and expiration.
//
// The shape follows the teacher lineage's transaction pool: a facade
// (TransactionPool, here) owning a global id-keyed map, one ordered list
// per sender, a global fee-priority queue, and a ticker-driven loop that
// periodically reconciles per-sender processable/unprocessable
// partitions against an injected apply callback.
package mempool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/event"
	"github.com/luxfi/log"

	"github.com/luxfi/mempool/internal/feeheap"
	"github.com/luxfi/mempool/internal/txlist"
)

// AddStatus is the outcome of a call to Add.
type AddStatus int

const (
	StatusOK AddStatus = iota
	StatusFail
)

// AddResult is what Add returns: never an error for a data-dependent
// admission failure, only a status plus the sentinel error that explains
// it (see errors.go).
type AddResult struct {
	Status AddStatus
	Err    error
}

// TransactionPool is the facade described in the package doc comment. The
// zero value is not usable; construct with New.
type TransactionPool struct {
	cfg     Config
	metrics *poolMetrics

	mu    sync.RWMutex
	all   map[common.Hash]*entry
	lists map[common.Address]*txlist.List
	queue *feeheap.Queue

	feed event.Feed
	subs event.SubscriptionScope

	reorganizing atomic.Bool

	quit    chan struct{}
	wg      sync.WaitGroup
	started bool
}

// New constructs a TransactionPool. cfg is sanitized in place: zero-valued
// optional fields are filled with their documented defaults. An error is
// returned only if a required callback (ApplyTransactions, AddressOf,
// BytesOf) is missing.
func New(cfg Config) (*TransactionPool, error) {
	if err := cfg.sanitize(); err != nil {
		return nil, err
	}
	return &TransactionPool{
		cfg:     cfg,
		metrics: newPoolMetrics(cfg.MetricsNamespace),
		all:     make(map[common.Hash]*entry),
		lists:   make(map[common.Address]*txlist.List),
		queue:   feeheap.New(),
		quit:    make(chan struct{}),
	}, nil
}

// Add admits tx into the pool, implementing the seven steps of spec §4.3
// verbatim. It never panics for a data-dependent failure; invariant
// violations detected internally (programmer error, not caller error)
// panic, per the error handling policy.
func (p *TransactionPool) Add(ctx context.Context, tx Transaction) (AddResult, error) {
	id := tx.ID()

	// Step 1: duplicate guard. Idempotent OK, per the Open Question
	// resolution in §9: a second add of an already-admitted id is a
	// successful no-op.
	p.mu.RLock()
	if _, exists := p.all[id]; exists {
		p.mu.RUnlock()
		return AddResult{Status: StatusOK}, nil
	}
	p.mu.RUnlock()

	sender := p.cfg.AddressOf(tx.SenderPublicKey())
	bytesLength := len(p.cfg.BytesOf(tx))
	priority := feePriority(tx.Fee(), tx.MinFee(), bytesLength)

	// Step 2: entrance fee floor.
	if priority.Cmp(p.cfg.MinEntranceFeePriority) < 0 {
		p.metrics.incRejected()
		log.Debug("mempool: rejecting transaction below entrance floor", "id", id, "feePriority", priority)
		return AddResult{Status: StatusFail, Err: ErrInsufficientEntranceFee}, nil
	}

	p.mu.Lock()
	if _, exists := p.all[id]; exists {
		// Raced with a concurrent Add for the same id between the first
		// check and here; still idempotent.
		p.mu.Unlock()
		return AddResult{Status: StatusOK}, nil
	}

	// Step 3: capacity arbitration.
	if err := p.ensureCapacity(priority); err != nil {
		p.mu.Unlock()
		p.metrics.incRejected()
		return AddResult{Status: StatusFail, Err: err}, nil
	}
	p.mu.Unlock()

	// Step 4: apply probe. This is the suspension point from §5: the
	// mutex is released across the callback so remove/expire can race
	// ahead of it.
	applyStart := p.cfg.Clock.Now()
	verdicts, err := p.cfg.ApplyTransactions(ctx, []Transaction{tx})
	p.metrics.addApplyDuration(p.cfg.Clock.Now().Sub(applyStart))
	if err != nil {
		p.metrics.incApplyFailure()
		log.Error("mempool: apply probe failed", "id", id, "err", err)
		return AddResult{Status: StatusFail, Err: ErrInvalidTransaction}, nil
	}
	if len(verdicts) != 1 {
		log.Error("mempool: apply probe returned unexpected verdict count", "id", id, "got", len(verdicts))
		return AddResult{Status: StatusFail, Err: ErrInvalidTransaction}, nil
	}
	verdict := verdicts[0]
	if verdict.Status != VerdictOK && !verdict.IsNonceGap() {
		return AddResult{Status: StatusFail, Err: ErrInvalidTransaction}, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.all[id]; exists {
		// Removed-and-readded or duplicate raced in again while apply was
		// in flight.
		return AddResult{Status: StatusOK}, nil
	}

	// Capacity may have been consumed by a concurrent Add while the mutex
	// was released across the apply probe; re-arbitrate before inserting
	// so invariant I2 cannot be violated by that race.
	if err := p.ensureCapacity(priority); err != nil {
		p.metrics.incRejected()
		return AddResult{Status: StatusFail, Err: err}, nil
	}

	// Step 5: sender-list admission.
	list, ok := p.lists[sender]
	if !ok {
		list = txlist.New()
		p.lists[sender] = list
	}
	outcome := list.Add(
		txlist.Tx{ID: id, Nonce: tx.Nonce(), Fee: tx.Fee()},
		false,
		p.cfg.MaxTransactionsPerAccount,
		p.cfg.MinReplacementFeeDifference,
	)
	if !outcome.Added {
		if list.Empty() {
			delete(p.lists, sender)
		}
		p.metrics.incRejected()
		return AddResult{Status: StatusFail, Err: listRejectToError(outcome.Reject)}, nil
	}
	if outcome.Removed != nil {
		p.deregister(outcome.Removed.ID, listRemovedCause(outcome.RemovedReason))
	}

	// Step 6: register.
	e := &entry{
		tx:          tx,
		sender:      sender,
		bytesLength: bytesLength,
		feePriority: priority,
		receivedAt:  p.cfg.Clock.Now(),
	}
	p.all[id] = e
	p.queue.Insert(id, priority, e.receivedAt)

	// Direct promotion on immediate successor, per §4.3 step 4's
	// parenthetical: if this transaction's verdict was OK and it is now
	// the head of its sender's promotable block, promote it without
	// waiting for the next reorganize pass.
	if verdict.Status == VerdictOK {
		if promotable := list.GetPromotable(); len(promotable) > 0 && promotable[0].ID == id {
			list.Promote(promotable[:1])
		}
	}

	p.metrics.setSize(len(p.all))
	p.metrics.observeAccountSize(list.Len())

	// Step 7: emit.
	p.emitAdded(id)
	return AddResult{Status: StatusOK}, nil
}

// ensureCapacity implements §4.3 step 3. If the pool is below capacity
// it is a no-op; otherwise it evicts (unprocessable first, then
// processable) to make room, or returns ErrPoolFull if priority does not
// clear the current minimum or nothing is evictable. Callers hold p.mu.
func (p *TransactionPool) ensureCapacity(priority *uint256.Int) error {
	if len(p.all) < p.cfg.MaxTransactions {
		return nil
	}
	floor, ok := p.queue.PeekMin()
	if !ok || priority.Cmp(floor.Priority) <= 0 {
		return ErrPoolFull
	}
	if !p.evictUnprocessable() && !p.evictProcessable() {
		return ErrPoolFull
	}
	return nil
}

// Remove deletes tx by id, per §4.7. Returns false if id was absent.
func (p *TransactionPool) Remove(id common.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.all[id]; !exists {
		return false
	}
	p.deregister(id, CauseExplicit)
	p.metrics.setSize(len(p.all))
	return true
}

// Get returns the transaction with id, if present.
func (p *TransactionPool) Get(id common.Hash) (Transaction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.all[id]
	if !ok {
		return nil, false
	}
	return e.tx, true
}

// Contains reports whether id is currently admitted.
func (p *TransactionPool) Contains(id common.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.all[id]
	return ok
}

// Len returns the number of currently admitted transactions.
func (p *TransactionPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.all)
}

// GetAll returns a snapshot of every admitted transaction. Mutating the
// returned slice does not affect pool state.
func (p *TransactionPool) GetAll() []Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Transaction, 0, len(p.all))
	for _, e := range p.all {
		out = append(out, e.tx)
	}
	return out
}

// GetProcessableTransactions returns a deep copy keyed by sender address,
// including only senders whose processable partition is non-empty, per
// §4.7's explicit deep-copy requirement.
func (p *TransactionPool) GetProcessableTransactions() map[common.Address][]Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[common.Address][]Transaction)
	for sender, list := range p.lists {
		processable := list.GetProcessable()
		if len(processable) == 0 {
			continue
		}
		txs := make([]Transaction, 0, len(processable))
		for _, ltx := range processable {
			if e, ok := p.all[ltx.ID]; ok {
				txs = append(txs, e.tx)
			}
		}
		out[sender] = txs
	}
	return out
}

// deregister removes id from every index: all, the sender list, and the
// fee-priority queue, deleting the sender's list if it becomes empty
// (invariant I5). Callers hold p.mu.
func (p *TransactionPool) deregister(id common.Hash, reason RemovalCause) {
	e, ok := p.all[id]
	if !ok {
		return
	}
	delete(p.all, id)
	p.queue.Remove(id)
	if list, ok := p.lists[e.sender]; ok {
		// After a same-nonce replacement the list already holds the
		// newcomer at this nonce; only drop the slot if it still holds id.
		if ltx, held := list.Get(e.tx.Nonce()); held && ltx.ID == id {
			list.Remove(e.tx.Nonce())
		}
		if list.Empty() {
			delete(p.lists, e.sender)
		}
	}
	p.metrics.incRemoved(reason)
	p.emitRemoved(id, reason)
}

// Start begins the reorganize and expire tickers. Matches the teacher's
// Start/loop() convention (core/txpool/txpool.go, mainchain/tx_pool's
// collectTicker).
func (p *TransactionPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.quit = make(chan struct{})
	p.wg.Add(1)
	go p.loop()
}

// Stop cancels both tickers and waits for an in-flight reorganize or
// expire pass to finish before returning. It does not force-cancel a
// pending apply call (§5's cancellation contract).
func (p *TransactionPool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	close(p.quit)
	p.wg.Wait()
	p.subs.Close()
}

func (p *TransactionPool) loop() {
	defer p.wg.Done()

	reorganizeTicker := time.NewTicker(p.cfg.TransactionReorganizationInterval)
	defer reorganizeTicker.Stop()
	expireTicker := time.NewTicker(p.cfg.ExpiryInterval)
	defer expireTicker.Stop()

	for {
		select {
		case <-reorganizeTicker.C:
			p.Reorganize(context.Background())
		case <-expireTicker.C:
			p.Expire()
		case <-p.quit:
			return
		}
	}
}

func listRejectToError(reason txlist.RejectReason) error {
	switch reason {
	case txlist.RejectPoolFullForAccount:
		return ErrPoolFullForAccount
	case txlist.RejectProcessableNonceLocked:
		return ErrProcessableNonceLocked
	case txlist.RejectInsufficientReplacementFee:
		return ErrInsufficientReplacementFee
	default:
		return fmt.Errorf("mempool: unrecognized list rejection %q", reason)
	}
}

func listRemovedCause(reason txlist.RemovalReason) RemovalCause {
	switch reason {
	case txlist.RemovedReplaced:
		return CauseReplaced
	case txlist.RemovedAccountOverflow:
		return CausePoolFull
	default:
		return CauseExplicit
	}
}
