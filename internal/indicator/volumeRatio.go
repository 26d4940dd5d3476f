package indicator

import "github.com/Alias1177/KuFutures/internal/model"

// VolumeRatio compares the last bar volume to its rolling average.
// Flat or missing volume reads as a neutral 1.0.
func VolumeRatio(candles []model.Candle, period int) float64 {
	if len(candles) == 0 {
		return 1.0
	}
	vols := model.Volumes(candles)
	avg := SMA(vols, period)
	if avg == 0 {
		return 1.0
	}
	return vols[len(vols)-1] / avg
}
