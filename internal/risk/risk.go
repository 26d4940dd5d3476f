package risk

import (
	"math"

	"github.com/pkg/errors"

	"github.com/Alias1177/KuFutures/internal/model"
)

const (
	atrStopMultiplier = 1.5
	minRiskReward     = 2.0
	marginCapFraction = 0.8 // доля баланса, выше которой маржу не раздуваем

	// KuCoin futures fee schedule, percent of notional.
	MakerFeePct = 0.02
	TakerFeePct = 0.06
)

// tpLevels are the partial exit targets: R multiple and the share of
// the position closed at each.
var tpLevels = []struct {
	R        float64
	AllocPct float64
}{
	{2.5, 50},
	{4.0, 30},
	{6.0, 20},
}

// TakeProfit is one partial exit target.
type TakeProfit struct {
	Price         float64 `json:"price"`
	R             float64 `json:"r"`              // multiple of the entry risk
	AllocationPct float64 `json:"allocation_pct"` // share of the position to close
}

// TakeProfits builds the ladder of partial exits from the entry risk.
// Returns nil when the stop sits on the entry.
func TakeProfits(entry, stop float64, side model.Side) []TakeProfit {
	dist := math.Abs(entry - stop)
	if dist == 0 {
		return nil
	}

	targets := make([]TakeProfit, 0, len(tpLevels))
	for _, lvl := range tpLevels {
		price := entry + lvl.R*dist
		if side == model.Short {
			price = entry - lvl.R*dist
		}
		targets = append(targets, TakeProfit{Price: price, R: lvl.R, AllocationPct: lvl.AllocPct})
	}
	return targets
}

// PositionSizeResult holds position sizing calculation results
type PositionSizeResult struct {
	Quantity     float64 `json:"quantity"` // base units
	NotionalUSDT float64 `json:"notional_usdt"`
	MarginUSDT   float64 `json:"margin_usdt"`
	RiskUSDT     float64 `json:"risk_usdt"`
	StopDistance float64 `json:"stop_distance"`
	Capped       bool    `json:"capped"` // урезано ограничением по марже
}

// PositionSize derives the position from the account risk budget: the
// quantity that loses exactly riskPct of the balance if the stop is
// hit. The margin is additionally capped at a fraction of the balance
// so one trade cannot lock the whole account.
func PositionSize(balance, riskPct, entry, stop, leverage float64) (*PositionSizeResult, error) {
	if balance <= 0 {
		return nil, errors.New("balance must be positive")
	}
	if entry <= 0 {
		return nil, errors.New("entry price must be positive")
	}
	if leverage < 1 {
		return nil, errors.New("leverage must be at least 1")
	}
	dist := math.Abs(entry - stop)
	if dist == 0 {
		return nil, errors.New("stop distance is zero")
	}

	riskAmount := balance * riskPct / 100
	quantity := riskAmount / dist
	notional := quantity * entry
	margin := notional / leverage

	capped := false
	if maxMargin := balance * marginCapFraction; margin > maxMargin {
		scale := maxMargin / margin
		quantity *= scale
		notional *= scale
		margin = maxMargin
		riskAmount = quantity * dist
		capped = true
	}

	return &PositionSizeResult{
		Quantity:     quantity,
		NotionalUSDT: notional,
		MarginUSDT:   margin,
		RiskUSDT:     riskAmount,
		StopDistance: dist,
		Capped:       capped,
	}, nil
}

// ValidateTrade rejects setups whose geometry does not pay: stop on
// the wrong side of the entry or reward below the minimum multiple of
// the risk.
func ValidateTrade(side model.Side, entry, stop, target float64) error {
	if entry <= 0 || stop <= 0 || target <= 0 {
		return errors.New("prices must be positive")
	}

	if side == model.Long {
		if stop >= entry {
			return errors.New("stop must sit below entry for LONG")
		}
		if target <= entry {
			return errors.New("target must sit above entry for LONG")
		}
	} else {
		if stop <= entry {
			return errors.New("stop must sit above entry for SHORT")
		}
		if target >= entry {
			return errors.New("target must sit below entry for SHORT")
		}
	}

	rr := math.Abs(target-entry) / math.Abs(entry-stop)
	if rr < minRiskReward {
		return errors.Errorf("risk/reward %.2f below minimum %.1f", rr, minRiskReward)
	}
	return nil
}

// ATRStop calculates a stop-loss level from current volatility.
func ATRStop(entry, atr float64, side model.Side) float64 {
	if side == model.Long {
		return entry - atr*atrStopMultiplier
	}
	return entry + atr*atrStopMultiplier
}

// FeeEstimate is the commission cost of a position in USDT.
type FeeEstimate struct {
	Maker     float64 `json:"maker"`
	Taker     float64 `json:"taker"`
	RoundTrip float64 `json:"round_trip"` // market in + market out
}

// Fees estimates commissions for a notional position value. The
// round-trip percent (2 x taker) doubles as the breakeven price move:
// позиция в нуле, когда цена прошла 0.12% в нужную сторону.
func Fees(notional float64) FeeEstimate {
	return FeeEstimate{
		Maker:     notional * MakerFeePct / 100,
		Taker:     notional * TakerFeePct / 100,
		RoundTrip: notional * 2 * TakerFeePct / 100,
	}
}

// Suggestions предлагает действия по открытой позиции в зависимости от
// её текущей доходности.
func Suggestions(pos model.Position) []string {
	var out []string
	if pos.ROEPct >= 10 {
		out = append(out, "ROE выше 10% - зафиксируйте часть прибыли по тейкам")
	}
	if pos.ROEPct >= 5 {
		out = append(out, "ROE выше 5% - подтяните стоп в безубыток")
	}
	return out
}
