package indicator

// MACDSeries returns the fast-minus-slow EMA difference at every index.
func MACDSeries(closes []float64, fast, slow int) []float64 {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = fastEMA[i] - slowEMA[i]
	}
	return out
}

// MACD returns the last (line, signal, histogram) triple. The histogram
// is line minus signal by construction.
func MACD(closes []float64, fast, slow, signalPeriod int) (float64, float64, float64) {
	if len(closes) == 0 {
		return 0, 0, 0
	}

	macd := MACDSeries(closes, fast, slow)
	signal := EMA(macd, signalPeriod)

	line := macd[len(macd)-1]
	sig := signal[len(signal)-1]
	return line, sig, line - sig
}
