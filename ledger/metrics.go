package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	executedTxs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moeingledger",
		Name:      "transactions_executed_total",
		Help:      "Executed transactions by status category",
	}, []string{"category"})

	executedBlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moeingledger",
		Name:      "blocks_executed_total",
		Help:      "Blocks which left the monitor, by final state",
	}, []string{"state"})

	feeSettlementsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "moeingledger",
		Name:      "fee_settlements_dropped_total",
		Help:      "Blocks whose fees were not settled because no executor became idle in time",
	})

	sliceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "moeingledger",
		Name:      "slice_duration_seconds",
		Help:      "Time from dispatching a slice to the completion of its last transaction",
		Buckets:   prometheus.DefBuckets,
	})

	slowSlices = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "moeingledger",
		Name:      "slow_slice_waits_total",
		Help:      "Slice waits which expired before every transaction finished",
	})
)
