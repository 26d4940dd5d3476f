package indicator

const eps = 1e-9

// RSI returns the relative strength index of the last bar, built from
// the simple mean of gains and losses over the trailing window.
// A window with no movement at all reads as neutral 50.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50.0
	}

	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgGain == 0 && avgLoss == 0 {
		return 50.0
	}

	rs := avgGain / (avgLoss + eps)
	return 100.0 - 100.0/(1.0+rs)
}

// RSISeries returns the RSI at every index. Entries before the first
// full window read as neutral 50.
func RSISeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		if i < period {
			out[i] = 50.0
			continue
		}
		out[i] = RSI(closes[:i+1], period)
	}
	return out
}
