package trailing

import (
	"fmt"
	"math"

	"github.com/Alias1177/KuFutures/internal/model"
)

const (
	smartBaseMult = 2.0
	smartMinMult  = 0.8
	smartMaxMult  = 3.5
)

// SmartMultiplier adapts the ATR multiplier to momentum health. Each
// warning against the position tightens the trail, a strong trend
// loosens it, and the result is clamped so the stop neither strangles
// the trade nor drifts out of reach.
func SmartMultiplier(side model.Side, price float64, snap *model.TimeframeSnapshot) (float64, []string) {
	mult := smartBaseMult
	var reasons []string
	adjust := func(delta float64, format string, args ...any) {
		mult += delta
		reasons = append(reasons, fmt.Sprintf(format, args...)+fmt.Sprintf(" (%+.1f)", delta))
	}

	if snap.ADX > 30 {
		adjust(0.5, "ADX %.1f, тренд сильный, даём ход", snap.ADX)
	} else if snap.ADX < 20 {
		adjust(-0.5, "ADX %.1f, тренда нет", snap.ADX)
	}

	if side == model.Long {
		if snap.RSI > 70 {
			adjust(-0.5, "RSI %.1f перекуплен", snap.RSI)
		} else if snap.RSI > 60 {
			adjust(-0.3, "RSI %.1f высоковат", snap.RSI)
		}

		if snap.MACDHist < 0 {
			adjust(-0.4, "гистограмма MACD отрицательная")
		} else if snap.MACDHist < 0.05 {
			adjust(-0.2, "импульс MACD затухает")
		}

		if snap.StochK > 80 {
			adjust(-0.3, "Stoch K %.1f в перекупленности", snap.StochK)
		}
		if price < snap.VWAP {
			adjust(-0.4, "цена под VWAP")
		}
		if snap.OBVSlope < 0 {
			adjust(-0.3, "OBV разворачивается вниз")
		}
		if snap.Trend == model.TrendDown {
			adjust(-0.6, "локальный тренд вниз")
		}
	} else {
		if snap.RSI < 30 {
			adjust(-0.5, "RSI %.1f перепродан", snap.RSI)
		} else if snap.RSI < 40 {
			adjust(-0.3, "RSI %.1f низковат", snap.RSI)
		}

		if snap.MACDHist > 0 {
			adjust(-0.4, "гистограмма MACD положительная")
		} else if snap.MACDHist > -0.05 {
			adjust(-0.2, "импульс MACD затухает")
		}

		if snap.StochK < 20 {
			adjust(-0.3, "Stoch K %.1f в перепроданности", snap.StochK)
		}
		if price > snap.VWAP {
			adjust(-0.4, "цена над VWAP")
		}
		if snap.OBVSlope > 0 {
			adjust(-0.3, "OBV разворачивается вверх")
		}
		if snap.Trend == model.TrendUp {
			adjust(-0.6, "локальный тренд вверх")
		}
	}

	return math.Min(math.Max(mult, smartMinMult), smartMaxMult), reasons
}
