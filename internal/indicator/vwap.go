package indicator

import "github.com/Alias1177/KuFutures/internal/model"

// VWAP is cumulative typical-price-times-volume over cumulative volume.
// Window-cumulative: the anchor is the start of the fetched window, not
// a session boundary, so it behaves as a rolling VWAP proxy.
func VWAP(candles []model.Candle) float64 {
	var pv, vol float64
	for _, c := range candles {
		typical := (c.High + c.Low + c.Close) / 3.0
		pv += typical * c.Volume
		vol += c.Volume
	}
	if vol == 0 {
		if len(candles) == 0 {
			return 0
		}
		return candles[len(candles)-1].Close
	}
	return pv / vol
}
