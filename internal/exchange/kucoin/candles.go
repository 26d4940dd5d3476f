package kucoin

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/Alias1177/KuFutures/internal/model"
)

// GetCandles fetches up to limit klines for the timeframe, oldest first.
// Symbol may be in display or contract form.
func (c *Client) GetCandles(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	contract := ToContract(symbol)
	granularity := tf.Minutes()

	// KuCoin serves at most 200 bars per query; ask by time window.
	from := time.Now().Add(-time.Duration(limit*granularity) * time.Minute).UnixMilli()
	endpoint := fmt.Sprintf("/api/v1/kline/query?symbol=%s&granularity=%d&from=%d", contract, granularity, from)

	data, err := c.get(ctx, endpoint, false)
	if err != nil {
		return nil, err
	}

	// Rows come as [time(ms), open, high, low, close, volume].
	var rows [][]float64
	if err := sonic.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrapf(err, "decode klines for %s", contract)
	}

	candles := make([]model.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		candles = append(candles, model.Candle{
			Timestamp: int64(row[0]),
			Open:      row[1],
			High:      row[2],
			Low:       row[3],
			Close:     row[4],
			Volume:    row[5],
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp < candles[j].Timestamp
	})

	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}

	c.logger.Debug().
		Str("symbol", contract).
		Str("timeframe", string(tf)).
		Int("count", len(candles)).
		Msg("fetched candles")

	return candles, nil
}
