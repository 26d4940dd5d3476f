package indicator

// StochRSI min-max normalizes the RSI over the trailing window to 0-100
// and double-smooths the result. Returns the last %K and %D.
func StochRSI(closes []float64, period, smoothK, smoothD int) (float64, float64) {
	if len(closes) < period+1 {
		return 50.0, 50.0
	}

	rsis := RSISeries(closes, period)

	stoch := make([]float64, len(rsis))
	for i := range rsis {
		lo, hi := rsis[i], rsis[i]
		start := i - period + 1
		if start < 0 {
			start = 0
		}
		for j := start; j <= i; j++ {
			if rsis[j] < lo {
				lo = rsis[j]
			}
			if rsis[j] > hi {
				hi = rsis[j]
			}
		}
		if hi-lo < eps {
			stoch[i] = 50.0 // flat RSI window, no range to normalize
		} else {
			stoch[i] = (rsis[i] - lo) / (hi - lo) * 100.0
		}
	}

	k := make([]float64, len(stoch))
	for i := range stoch {
		k[i] = SMA(stoch[:i+1], smoothK)
	}

	return k[len(k)-1], SMA(k, smoothD)
}
