package market

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/KuFutures/internal/indicator"
	"github.com/Alias1177/KuFutures/internal/model"
)

// Indicator periods shared by every timeframe.
const (
	rsiPeriod      = 14
	macdFast       = 12
	macdSlow       = 26
	macdSignal     = 9
	stochPeriod    = 14
	stochSmoothK   = 3
	stochSmoothD   = 3
	adxPeriod      = 14
	atrPeriod      = 14
	bbPeriod       = 20
	bbStdDev       = 2.0
	obvLookback    = 5
	volRatioPeriod = 20
)

// ScoringTimeframes are the timeframes the opportunity scorer consumes.
var ScoringTimeframes = []model.Timeframe{model.TF15m, model.TF1h, model.TF4h}

// AllTimeframes adds the daily view shown in full reports.
var AllTimeframes = []model.Timeframe{model.TF15m, model.TF1h, model.TF4h, model.TF1d}

// CandleSource provides raw OHLCV history.
type CandleSource interface {
	GetCandles(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Candle, error)
}

// Fetcher turns raw candles into per-timeframe indicator snapshots.
type Fetcher struct {
	source CandleSource
	logger zerolog.Logger
}

func NewFetcher(source CandleSource) *Fetcher {
	return &Fetcher{
		source: source,
		logger: log.With().Str("component", "market").Logger(),
	}
}

// candleCount returns how much history a timeframe needs. Higher
// timeframes get shorter windows: 150 4h candles already span 25 days.
func candleCount(tf model.Timeframe) int {
	switch tf {
	case model.TF4h:
		return 150
	case model.TF1d:
		return 100
	default:
		return 200
	}
}

// Snapshot fetches candles for one timeframe and computes the full
// indicator set over them.
func (f *Fetcher) Snapshot(ctx context.Context, symbol string, tf model.Timeframe) (*model.TimeframeSnapshot, error) {
	candles, err := f.source.GetCandles(ctx, symbol, tf, candleCount(tf))
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s %s candles", symbol, tf)
	}
	if len(candles) == 0 {
		return nil, errors.Errorf("no %s candles returned for %s", tf, symbol)
	}

	return Compute(candles, tf), nil
}

// MultiSnapshot fetches and computes the given timeframes (all of them
// when none are named). Любой недостающий таймфрейм считается ошибкой:
// скоринг без полной картины вводит в заблуждение.
func (f *Fetcher) MultiSnapshot(ctx context.Context, symbol string, tfs ...model.Timeframe) (map[model.Timeframe]*model.TimeframeSnapshot, error) {
	if len(tfs) == 0 {
		tfs = AllTimeframes
	}

	snapshots := make(map[model.Timeframe]*model.TimeframeSnapshot, len(tfs))
	for _, tf := range tfs {
		snap, err := f.Snapshot(ctx, symbol, tf)
		if err != nil {
			return nil, err
		}
		snapshots[tf] = snap
	}

	f.logger.Debug().Str("symbol", symbol).Int("timeframes", len(snapshots)).Msg("snapshots computed")
	return snapshots, nil
}

// Compute derives every indicator reading from one candle window.
func Compute(candles []model.Candle, tf model.Timeframe) *model.TimeframeSnapshot {
	closes := model.Closes(candles)
	last := closes[len(closes)-1]

	snap := &model.TimeframeSnapshot{
		Timeframe: tf,
		Close:     last,

		EMA20:  indicator.EMALast(closes, 20),
		EMA50:  indicator.EMALast(closes, 50),
		EMA100: indicator.EMALast(closes, 100),
		EMA200: indicator.EMALast(closes, 200),

		RSI: indicator.RSI(closes, rsiPeriod),

		ATR: indicator.ATR(candles, atrPeriod),

		OBV:      indicator.OBV(candles),
		OBVSlope: indicator.OBVSlope(candles, obvLookback),

		VWAP:        indicator.VWAP(candles),
		VolumeRatio: indicator.VolumeRatio(candles, volRatioPeriod),
	}

	snap.MACD, snap.MACDSignal, snap.MACDHist = indicator.MACD(closes, macdFast, macdSlow, macdSignal)
	snap.StochK, snap.StochD = indicator.StochRSI(closes, stochPeriod, stochSmoothK, stochSmoothD)
	snap.ADX, snap.PlusDI, snap.MinusDI = indicator.ADX(candles, adxPeriod)

	snap.BBUpper, snap.BBMiddle, snap.BBLower = indicator.Bollinger(closes, bbPeriod, bbStdDev)
	snap.BBWidth = indicator.BollingerWidth(snap.BBUpper, snap.BBMiddle, snap.BBLower)
	snap.BBPosition = indicator.BollingerPosition(last, snap.BBUpper, snap.BBLower)

	if snap.EMA20 > snap.EMA50 {
		snap.Trend = model.TrendUp
	} else {
		snap.Trend = model.TrendDown
	}

	return snap
}
