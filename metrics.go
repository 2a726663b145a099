// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"fmt"
	"time"

	metric "github.com/luxfi/metric"
)

// poolMetrics is the namespaced set of gauges and counters the pool
// registers, grounded on utils.MeteredCache's namespace-or-nil pattern:
// every field is left nil (and every use guarded) when no namespace was
// configured, so metrics stay entirely optional.
type poolMetrics struct {
	size               metric.Gauge
	sizePerAccountPeak metric.Gauge
	accountPeakValue   int

	removedReplaced  metric.Counter
	removedPoolFull  metric.Counter
	removedExpired   metric.Counter
	removedExplicit  metric.Counter
	rejected         metric.Counter

	reorganizeDuration metric.Counter
	applyDuration      metric.Counter
	applyFailures      metric.Counter
}

func newPoolMetrics(namespace string) *poolMetrics {
	if namespace == "" {
		return &poolMetrics{}
	}
	name := func(s string) string { return fmt.Sprintf("%s/%s", namespace, s) }
	return &poolMetrics{
		size:               metric.NewGauge(name("size")),
		sizePerAccountPeak: metric.NewGauge(name("size_per_account_peak")),
		removedReplaced:    metric.NewCounter(name("removed_replaced")),
		removedPoolFull:    metric.NewCounter(name("removed_pool_full")),
		removedExpired:     metric.NewCounter(name("removed_expired")),
		removedExplicit:    metric.NewCounter(name("removed_explicit")),
		rejected:           metric.NewCounter(name("rejected")),
		reorganizeDuration: metric.NewCounter(name("reorganize_duration_ns")),
		applyDuration:      metric.NewCounter(name("apply_duration_ns")),
		applyFailures:      metric.NewCounter(name("apply_failures")),
	}
}

func (m *poolMetrics) setSize(n int) {
	if m.size != nil {
		m.size.Set(float64(n))
	}
}

func (m *poolMetrics) observeAccountSize(n int) {
	if m.sizePerAccountPeak != nil && n > m.accountPeakValue {
		m.accountPeakValue = n
		m.sizePerAccountPeak.Set(float64(n))
	}
}

func (m *poolMetrics) incRemoved(reason RemovalCause) {
	var c metric.Counter
	switch reason {
	case CauseReplaced:
		c = m.removedReplaced
	case CausePoolFull:
		c = m.removedPoolFull
	case CauseExpired:
		c = m.removedExpired
	case CauseExplicit:
		c = m.removedExplicit
	}
	if c != nil {
		c.Add(1)
	}
}

func (m *poolMetrics) incRejected() {
	if m.rejected != nil {
		m.rejected.Add(1)
	}
}

func (m *poolMetrics) incApplyFailure() {
	if m.applyFailures != nil {
		m.applyFailures.Add(1)
	}
}

func (m *poolMetrics) addApplyDuration(d time.Duration) {
	if m.applyDuration != nil {
		m.applyDuration.Add(float64(d.Nanoseconds()))
	}
}

func (m *poolMetrics) addReorganizeDuration(d time.Duration) {
	if m.reorganizeDuration != nil {
		m.reorganizeDuration.Add(float64(d.Nanoseconds()))
	}
}
