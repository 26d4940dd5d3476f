package indicator

import (
	"math"

	"github.com/Alias1177/KuFutures/internal/model"
)

// ADX returns the average directional index together with its +DI/-DI
// pair. True range and directional movement are smoothed with rolling
// sums over the period, DX with a rolling mean of the same length.
func ADX(candles []model.Candle, period int) (float64, float64, float64) {
	if period <= 0 || len(candles) < 2*period+1 {
		return 0, 0, 0
	}

	n := len(candles)
	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 1; i < n; i++ {
		c, prev := candles[i], candles[i-1]
		tr[i] = trueRange(c, prev)

		upMove := c.High - prev.High
		downMove := prev.Low - c.Low
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	rollSum := func(values []float64, end int) float64 {
		var s float64
		for i := end - period + 1; i <= end; i++ {
			s += values[i]
		}
		return s
	}

	dx := make([]float64, n)
	var plusDI, minusDI float64
	for i := period; i < n; i++ {
		trSum := rollSum(tr, i)
		if trSum < eps {
			continue // dead window, DX stays 0
		}
		pdi := 100.0 * rollSum(plusDM, i) / trSum
		mdi := 100.0 * rollSum(minusDM, i) / trSum
		dx[i] = 100.0 * math.Abs(pdi-mdi) / (pdi + mdi + eps)
		plusDI, minusDI = pdi, mdi
	}

	var adx float64
	for i := n - period; i < n; i++ {
		adx += dx[i]
	}
	adx /= float64(period)

	return adx, plusDI, minusDI
}
