// internal/utils/metrics.go
package utils

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	tradeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launch_engine_trades_total",
			Help: "Total number of curve trades processed",
		},
		[]string{"side", "status"},
	)
	tradeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "launch_engine_trade_duration_seconds",
			Help:    "Duration of curve trade processing",
			Buckets: prometheus.LinearBuckets(0, 0.1, 10),
		},
	)
	blockedTransfers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "launch_engine_blocked_transfers_total",
			Help: "Transfers rejected by the entry price floor",
		},
	)
	phaseTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launch_engine_phase_transitions_total",
			Help: "Launch phase transitions",
		},
		[]string{"to"},
	)
)

func init() {
	prometheus.MustRegister(tradeCounter)
	prometheus.MustRegister(tradeDuration)
	prometheus.MustRegister(blockedTransfers)
	prometheus.MustRegister(phaseTransitions)
}

func MeasureTradeDuration(side string, f func() error) error {
	start := time.Now()
	err := f()
	duration := time.Since(start).Seconds()
	tradeDuration.Observe(duration)
	if err != nil {
		tradeCounter.WithLabelValues(side, "failed").Inc()
	} else {
		tradeCounter.WithLabelValues(side, "success").Inc()
	}
	return err
}

func RecordBlockedTransfer() {
	blockedTransfers.Inc()
}

func RecordPhaseTransition(to string) {
	phaseTransitions.WithLabelValues(to).Inc()
}
