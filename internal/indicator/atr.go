package indicator

import (
	"math"

	"github.com/Alias1177/KuFutures/internal/model"
)

// ATR returns the rolling mean of the true range over the last period bars.
func ATR(candles []model.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}

	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		sum += trueRange(candles[i], candles[i-1])
	}
	return sum / float64(period)
}

func trueRange(c, prev model.Candle) float64 {
	hl := c.High - c.Low
	hc := math.Abs(c.High - prev.Close)
	lc := math.Abs(c.Low - prev.Close)
	return math.Max(hl, math.Max(hc, lc))
}
