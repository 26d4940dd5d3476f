package indicator

// EMA returns the exponential moving average series with smoothing
// 2/(period+1), seeded from the first value.
func EMA(values []float64, period int) []float64 {
	if len(values) == 0 || period <= 0 {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*k + out[i-1]
	}
	return out
}

// EMALast returns only the final EMA value.
func EMALast(values []float64, period int) float64 {
	ema := EMA(values, period)
	if len(ema) == 0 {
		return 0
	}
	return ema[len(ema)-1]
}

// SMA returns the mean of the last period values, or of the whole
// series when it is shorter than the period.
func SMA(values []float64, period int) float64 {
	if len(values) == 0 || period <= 0 {
		return 0
	}
	if period > len(values) {
		period = len(values)
	}
	var sum float64
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period)
}
