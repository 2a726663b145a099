// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

// Expire implements §4.6: remove every transaction whose age exceeds
// TransactionExpiryTime, emitting transaction:removed(reason=expired) for
// each.
func (p *TransactionPool) Expire() {
	now := p.cfg.Clock.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	var expired []ID
	for id, e := range p.all {
		if now.Sub(e.receivedAt) > p.cfg.TransactionExpiryTime {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		p.deregister(id, CauseExpired)
	}
	if len(expired) > 0 {
		p.metrics.setSize(len(p.all))
	}
}
