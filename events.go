// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/event"
)

// EventKind distinguishes the two events the pool emits.
type EventKind int

const (
	EventAdded EventKind = iota
	EventRemoved
)

// RemovalCause names why a transaction.removed event fired.
type RemovalCause string

const (
	CausePoolFull RemovalCause = "pool_full"
	CauseExpired  RemovalCause = "expired"
	CauseExplicit RemovalCause = "explicit"
	CauseReplaced RemovalCause = "replaced"
)

// Event is a single pool notification, delivered synchronously to every
// subscriber after the corresponding index mutation is visible. A
// transaction yields added exactly once, then removed exactly once; the
// pool emits no promotion or demotion events.
type Event struct {
	Kind   EventKind
	ID     common.Hash
	Reason RemovalCause
}

// Subscribe registers ch to receive pool events. The returned
// event.Subscription must be Unsubscribe()'d by the caller (or left to
// Stop, which closes the subscription scope and so unsubscribes every
// outstanding subscription at once),
// exactly the teacher's SubscriptionScope-backed contract
// (core/txpool/txpool.go's subs event.SubscriptionScope).
func (p *TransactionPool) Subscribe(ch chan<- Event) event.Subscription {
	return p.subs.Track(p.feed.Subscribe(ch))
}

func (p *TransactionPool) emitAdded(id common.Hash) {
	p.feed.Send(Event{Kind: EventAdded, ID: id})
}

func (p *TransactionPool) emitRemoved(id common.Hash, reason RemovalCause) {
	p.feed.Send(Event{Kind: EventRemoved, ID: id, Reason: reason})
}
