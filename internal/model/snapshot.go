package model

// Trend is the EMA20 vs EMA50 direction of a timeframe.
type Trend string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
)

// TimeframeSnapshot holds every derived reading for one symbol on one
// timeframe. Recomputed in full from the fetched window on each poll.
type TimeframeSnapshot struct {
	Timeframe Timeframe `json:"timeframe"`
	Close     float64   `json:"close"`

	Trend  Trend   `json:"trend"`
	EMA20  float64 `json:"ema20"`
	EMA50  float64 `json:"ema50"`
	EMA100 float64 `json:"ema100"`
	EMA200 float64 `json:"ema200"`

	RSI        float64 `json:"rsi"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	MACDHist   float64 `json:"macd_hist"`
	StochK     float64 `json:"stoch_k"`
	StochD     float64 `json:"stoch_d"`

	ADX     float64 `json:"adx"`
	PlusDI  float64 `json:"plus_di"`
	MinusDI float64 `json:"minus_di"`
	ATR     float64 `json:"atr"`

	BBUpper    float64 `json:"bb_upper"`
	BBMiddle   float64 `json:"bb_middle"`
	BBLower    float64 `json:"bb_lower"`
	BBWidth    float64 `json:"bb_width"`
	BBPosition float64 `json:"bb_position"` // 0 at lower band, 1 at upper

	OBV      float64 `json:"obv"`
	OBVSlope float64 `json:"obv_slope"`

	VWAP        float64 `json:"vwap"`
	VolumeRatio float64 `json:"volume_ratio"`
}

// AboveVWAP reports whether the close sits above the window VWAP.
func (s TimeframeSnapshot) AboveVWAP() bool {
	return s.Close > s.VWAP
}

// ATRPct returns ATR as a percent of the close.
func (s TimeframeSnapshot) ATRPct() float64 {
	if s.Close == 0 {
		return 0
	}
	return s.ATR / s.Close * 100
}
