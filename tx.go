// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// ID is the pool's transaction-identity type.
type ID = common.Hash

// Address is the pool's sender-identity type.
type Address = common.Address

// Transaction is the opaque view of a pending transaction the pool
// consumes. The pool never inspects a transaction's payload; it only ever
// calls these accessors plus the injected Config.AddressOf/Config.BytesOf
// pure functions.
type Transaction interface {
	ID() common.Hash
	SenderPublicKey() []byte
	Nonce() uint64
	Fee() *uint256.Int
	MinFee() *uint256.Int
}

// entry is the pool's internal record for one admitted transaction: the
// caller-supplied Transaction plus everything the pool derives and stamps
// on admission.
type entry struct {
	tx          Transaction
	sender      common.Address
	bytesLength int
	feePriority *uint256.Int
	receivedAt  time.Time
}

// feePriority computes (fee - min_fee) / bytes_length using unsigned
// fixed-width integer division, which truncates toward zero by
// construction. fee is clamped to min_fee first so that a transaction
// whose fee happens to be below its own min_fee never underflows the
// unsigned subtraction.
func feePriority(fee, minFee *uint256.Int, bytesLength int) *uint256.Int {
	if bytesLength <= 0 {
		bytesLength = 1
	}
	diff := new(uint256.Int)
	if fee.Cmp(minFee) <= 0 {
		return diff // zero
	}
	diff.Sub(fee, minFee)
	return diff.Div(diff, uint256.NewInt(uint64(bytesLength)))
}
