package model

import "math"

// Side is the direction of a position or score.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Long {
		return Short
	}
	return Long
}

// Position is a read-only mirror of exchange-side position state,
// fetched fresh on every poll and never mutated locally.
type Position struct {
	Symbol           string  `json:"symbol"`
	Side             Side    `json:"side"`
	Size             float64 `json:"size"` // contracts, always positive
	EntryPrice       float64 `json:"entry_price"`
	MarkPrice        float64 `json:"mark_price"`
	Leverage         float64 `json:"leverage"`
	UnrealizedPnl    float64 `json:"unrealized_pnl"`
	ROEPct           float64 `json:"roe_pct"` // return on equity in percent
	LiquidationPrice float64 `json:"liquidation_price"`
	MaintMargin      float64 `json:"maint_margin"`
}

// LiquidationDistancePct returns how far the mark price sits from
// liquidation, in percent of the mark price.
func (p Position) LiquidationDistancePct() float64 {
	if p.MarkPrice == 0 {
		return 0
	}
	return math.Abs(p.MarkPrice-p.LiquidationPrice) / p.MarkPrice * 100
}
