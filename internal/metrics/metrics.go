package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ScansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kufutures_scans_total",
			Help: "Completed watchlist scan rounds.",
		},
	)

	ScanErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kufutures_scan_errors_total",
			Help: "Failed symbol evaluations (by symbol).",
		},
		[]string{"symbol"},
	)

	SymbolScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kufutures_symbol_score",
			Help: "Last setup score per symbol and side (0-100).",
		},
		[]string{"symbol", "side"},
	)

	PositionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kufutures_positions_open",
			Help: "Open positions seen on the last poll.",
		},
	)

	AlertsFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kufutures_position_alerts_total",
			Help: "Position alerts raised (by level).",
		},
		[]string{"level"},
	)
)

func init() {
	prometheus.MustRegister(ScansTotal, ScanErrors, SymbolScore, PositionsOpen, AlertsFired)
}
