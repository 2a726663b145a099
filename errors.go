// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import "errors"

// Sentinel errors returned by Add. Callers compare with errors.Is; none of
// these indicate a programmer error, only a data-dependent admission
// failure.
var (
	// ErrInsufficientEntranceFee is returned when a brand new transaction's
	// fee_priority falls below the pool's configured entrance floor. The
	// floor is checked on every Add, whether or not the pool is full.
	ErrInsufficientEntranceFee = errors.New("mempool: fee_priority below entrance floor")

	// ErrPoolFull is returned when the pool is at its global capacity and
	// the incoming transaction does not clear the eviction bar.
	ErrPoolFull = errors.New("mempool: pool is full")

	// ErrPoolFullForAccount is returned when a sender's per-account slot
	// count is exhausted and the incoming nonce cannot fill an existing
	// gap without breaking invariant I3.
	ErrPoolFullForAccount = errors.New("mempool: sender account slots are full")

	// ErrInsufficientReplacementFee is returned when a same-nonce
	// replacement does not clear the configured replacement fee bump.
	ErrInsufficientReplacementFee = errors.New("mempool: replacement fee too low")

	// ErrProcessableNonceLocked is returned when a caller attempts to
	// replace a transaction that has already been promoted to processable.
	ErrProcessableNonceLocked = errors.New("mempool: processable nonce cannot be replaced")

	// ErrInvalidTransaction is returned when the apply probe for a brand
	// new transaction fails outright: the callback itself returned an
	// error, it returned the wrong number of verdicts, or it returned a
	// FAIL verdict that is not a nonce-gap signal.
	ErrInvalidTransaction = errors.New("mempool: invalid transaction")
)
