package indicator

import "math"

// Bollinger returns the (upper, middle, lower) bands: SMA of the last
// period closes plus/minus mult standard deviations.
func Bollinger(closes []float64, period int, mult float64) (float64, float64, float64) {
	if len(closes) == 0 {
		return 0, 0, 0
	}
	if len(closes) < period {
		last := closes[len(closes)-1]
		return last, last, last
	}

	middle := SMA(closes, period)

	var variance float64
	for i := len(closes) - period; i < len(closes); i++ {
		variance += math.Pow(closes[i]-middle, 2)
	}
	sd := math.Sqrt(variance / float64(period))

	return middle + sd*mult, middle, middle - sd*mult
}

// BollingerWidth is the band spread relative to the middle band.
func BollingerWidth(upper, middle, lower float64) float64 {
	if middle == 0 {
		return 0
	}
	return (upper - lower) / middle
}

// BollingerPosition places the close inside the band: 0 at the lower
// band, 1 at the upper, 0.5 when the band has collapsed.
func BollingerPosition(close, upper, lower float64) float64 {
	if upper-lower < eps {
		return 0.5
	}
	return (close - lower) / (upper - lower)
}
