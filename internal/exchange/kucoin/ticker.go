package kucoin

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/Alias1177/KuFutures/internal/model"
)

type contractDetail struct {
	Symbol         string  `json:"symbol"`
	LastTradePrice float64 `json:"lastTradePrice"`
	PriceChgPct    float64 `json:"priceChgPct"` // fraction, 0.0123 = +1.23%
	HighPrice      float64 `json:"highPrice"`
	LowPrice       float64 `json:"lowPrice"`
	TurnoverOf24h  float64 `json:"turnoverOf24h"`
}

// GetTicker returns the 24h market summary for one contract.
func (c *Client) GetTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	contract := ToContract(symbol)

	data, err := c.get(ctx, "/api/v1/contracts/"+contract, false)
	if err != nil {
		return nil, err
	}

	var detail contractDetail
	if err := sonic.Unmarshal(data, &detail); err != nil {
		return nil, errors.Wrapf(err, "decode contract detail for %s", contract)
	}

	return &model.Ticker{
		Symbol:      FromContract(detail.Symbol),
		Last:        detail.LastTradePrice,
		ChangePct:   detail.PriceChgPct * 100,
		High24h:     detail.HighPrice,
		Low24h:      detail.LowPrice,
		QuoteVolume: detail.TurnoverOf24h,
	}, nil
}

// GetPrice returns the last traded price for one contract.
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	ticker, err := c.GetTicker(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return ticker.Last, nil
}
