// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"errors"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
)

const (
	// DefaultMaxTransactions is the global pool capacity.
	DefaultMaxTransactions = 4096

	// DefaultMaxTransactionsPerAccount is the per-sender slot cap.
	DefaultMaxTransactionsPerAccount = 64

	// DefaultMinReplacementFeeDifference is the minimum fee delta a
	// same-nonce replacement must clear over its incumbent.
	DefaultMinReplacementFeeDifference = 10

	// DefaultTransactionExpiryTime is the maximum age of a pending
	// transaction before the expirer removes it.
	DefaultTransactionExpiryTime = 3 * time.Hour

	// DefaultTransactionReorganizationInterval is the period between
	// reorganize passes.
	DefaultTransactionReorganizationInterval = 1 * time.Second

	// DefaultExpiryInterval is the period between expire passes. Not named
	// in the configuration table; expiry runs on its own ticker, selected
	// alongside the reorganize ticker in the pool's single loop().
	DefaultExpiryInterval = 10 * time.Second
)

// Config holds the pool's tunables, mirroring DefaultTxPoolConfig /
// (*TxPoolConfig).sanitize in the teacher lineage.
type Config struct {
	// MaxTransactions is the global admitted-transaction cap (I2).
	MaxTransactions int

	// MaxTransactionsPerAccount is the per-sender cap (I3).
	MaxTransactionsPerAccount int

	// MinEntranceFeePriority is the admission floor on fee_priority,
	// checked for every new transaction whether or not the pool is full.
	MinEntranceFeePriority *uint256.Int

	// MinReplacementFeeDifference is the minimum fee delta a same-nonce
	// replacement must clear over its incumbent's fee.
	MinReplacementFeeDifference *uint256.Int

	// TransactionExpiryTime is the maximum age a pending transaction may
	// reach before the expirer removes it.
	TransactionExpiryTime time.Duration

	// TransactionReorganizationInterval is the period between reorganize
	// passes.
	TransactionReorganizationInterval time.Duration

	// ExpiryInterval is the period between expire passes.
	ExpiryInterval time.Duration

	// ApplyTransactions probes candidate transactions against current
	// chain state. Required; New returns an error if nil.
	ApplyTransactions ApplyFunc

	// AddressOf derives a sender address from a transaction's public key.
	// Required; New returns an error if nil.
	AddressOf func(publicKey []byte) common.Address

	// BytesOf serializes a transaction to compute its byte length for
	// fee_priority. Required; New returns an error if nil.
	BytesOf func(tx Transaction) []byte

	// Clock is the pool's time source, injectable for deterministic
	// testing of received_at stamping and expiry.
	Clock Clock

	// MetricsNamespace, if non-empty, registers the pool's gauges and
	// counters under this prefix via github.com/luxfi/metric. Empty
	// disables metrics registration.
	MetricsNamespace string
}

// DefaultConfig returns a Config with every option at its documented
// default except the three required callbacks, which the caller must set.
func DefaultConfig() Config {
	return Config{
		MaxTransactions:                    DefaultMaxTransactions,
		MaxTransactionsPerAccount:          DefaultMaxTransactionsPerAccount,
		MinEntranceFeePriority:             new(uint256.Int),
		MinReplacementFeeDifference:        uint256.NewInt(DefaultMinReplacementFeeDifference),
		TransactionExpiryTime:              DefaultTransactionExpiryTime,
		TransactionReorganizationInterval:  DefaultTransactionReorganizationInterval,
		ExpiryInterval:                     DefaultExpiryInterval,
		Clock:                              RealClock{},
	}
}

// sanitize fills any zero-valued optional field with its default and
// validates the required ones, matching the teacher's
// (*TxPoolConfig).sanitize pattern of replacing an unusable zero value.
// A warning is logged when MaxTransactions or MaxTransactionsPerAccount
// is corrected; the other defaults are filled in silently.
func (c *Config) sanitize() error {
	if c.MaxTransactions <= 0 {
		log.Warn("mempool: MaxTransactions unset or invalid, using default", "value", DefaultMaxTransactions)
		c.MaxTransactions = DefaultMaxTransactions
	}
	if c.MaxTransactionsPerAccount <= 0 {
		log.Warn("mempool: MaxTransactionsPerAccount unset or invalid, using default", "value", DefaultMaxTransactionsPerAccount)
		c.MaxTransactionsPerAccount = DefaultMaxTransactionsPerAccount
	}
	if c.MinEntranceFeePriority == nil {
		c.MinEntranceFeePriority = new(uint256.Int)
	}
	if c.MinReplacementFeeDifference == nil {
		c.MinReplacementFeeDifference = uint256.NewInt(DefaultMinReplacementFeeDifference)
	}
	if c.TransactionExpiryTime <= 0 {
		c.TransactionExpiryTime = DefaultTransactionExpiryTime
	}
	if c.TransactionReorganizationInterval <= 0 {
		c.TransactionReorganizationInterval = DefaultTransactionReorganizationInterval
	}
	if c.ExpiryInterval <= 0 {
		c.ExpiryInterval = DefaultExpiryInterval
	}
	if c.Clock == nil {
		c.Clock = RealClock{}
	}
	if c.ApplyTransactions == nil {
		return errors.New("mempool: Config.ApplyTransactions is required")
	}
	if c.AddressOf == nil {
		return errors.New("mempool: Config.AddressOf is required")
	}
	if c.BytesOf == nil {
		return errors.New("mempool: Config.BytesOf is required")
	}
	return nil
}
