package indicator

import "github.com/Alias1177/KuFutures/internal/model"

// OBVSeries returns cumulative signed volume starting from zero: volume
// is added on up-closes, subtracted on down-closes, skipped when the
// close is unchanged.
func OBVSeries(candles []model.Candle) []float64 {
	out := make([]float64, len(candles))
	for i := 1; i < len(candles); i++ {
		out[i] = out[i-1]
		switch {
		case candles[i].Close > candles[i-1].Close:
			out[i] += candles[i].Volume
		case candles[i].Close < candles[i-1].Close:
			out[i] -= candles[i].Volume
		}
	}
	return out
}

// OBV returns the last cumulative signed-volume value.
func OBV(candles []model.Candle) float64 {
	s := OBVSeries(candles)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// OBVSlope is the OBV change over the last lookback bars.
func OBVSlope(candles []model.Candle, lookback int) float64 {
	s := OBVSeries(candles)
	if len(s) == 0 || lookback <= 0 {
		return 0
	}
	if lookback >= len(s) {
		return s[len(s)-1] - s[0]
	}
	return s[len(s)-1] - s[len(s)-1-lookback]
}
