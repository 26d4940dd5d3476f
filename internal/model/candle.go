package model

import "time"

// Candle represents a single OHLCV bar. Series are ordered oldest to newest.
type Candle struct {
	Timestamp int64   `json:"timestamp"` // unix milliseconds, bar open time
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Time returns the bar open time.
func (c Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Closes extracts the close series from candles.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Volumes extracts the volume series from candles.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

// Timeframe is a candle interval understood by the exchange client.
type Timeframe string

const (
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
)

// Minutes returns the KuCoin kline granularity for the timeframe.
func (tf Timeframe) Minutes() int {
	switch tf {
	case TF5m:
		return 5
	case TF15m:
		return 15
	case TF1h:
		return 60
	case TF4h:
		return 240
	case TF1d:
		return 1440
	default:
		return 60
	}
}

// Ticker is a 24h market summary for one contract.
type Ticker struct {
	Symbol      string  `json:"symbol"`
	Last        float64 `json:"last"`
	ChangePct   float64 `json:"change_pct"` // 24h change in percent
	High24h     float64 `json:"high_24h"`
	Low24h      float64 `json:"low_24h"`
	QuoteVolume float64 `json:"quote_volume"`
}
