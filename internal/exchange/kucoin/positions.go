package kucoin

import (
	"context"
	"math"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/Alias1177/KuFutures/internal/model"
)

// ErrNoPosition is returned when the requested contract has no open
// position. Pollers treat it as "closed externally", not as a failure.
var ErrNoPosition = errors.New("no open position")

type rawPosition struct {
	Symbol            string  `json:"symbol"`
	CurrentQty        float64 `json:"currentQty"`
	AvgEntryPrice     float64 `json:"avgEntryPrice"`
	MarkPrice         float64 `json:"markPrice"`
	RealLeverage      float64 `json:"realLeverage"`
	UnrealisedPnl     float64 `json:"unrealisedPnl"`
	UnrealisedRoePcnt float64 `json:"unrealisedRoePcnt"`
	LiquidationPrice  float64 `json:"liquidationPrice"`
	MaintMargin       float64 `json:"maintMargin"`
}

func (r rawPosition) toModel() model.Position {
	side := model.Long
	if r.CurrentQty < 0 {
		side = model.Short
	}
	return model.Position{
		Symbol:           r.Symbol,
		Side:             side,
		Size:             math.Abs(r.CurrentQty),
		EntryPrice:       r.AvgEntryPrice,
		MarkPrice:        r.MarkPrice,
		Leverage:         r.RealLeverage,
		UnrealizedPnl:    r.UnrealisedPnl,
		ROEPct:           r.UnrealisedRoePcnt * 100,
		LiquidationPrice: r.LiquidationPrice,
		MaintMargin:      r.MaintMargin,
	}
}

// GetPositions returns every open position on the account.
func (c *Client) GetPositions(ctx context.Context) ([]model.Position, error) {
	data, err := c.get(ctx, "/api/v1/positions", true)
	if err != nil {
		return nil, err
	}

	var raw []rawPosition
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode positions")
	}

	positions := make([]model.Position, 0, len(raw))
	for _, r := range raw {
		if r.CurrentQty == 0 {
			continue
		}
		positions = append(positions, r.toModel())
	}
	return positions, nil
}

// GetPosition returns the open position for one contract, or
// ErrNoPosition when the account is flat there.
func (c *Client) GetPosition(ctx context.Context, symbol string) (*model.Position, error) {
	contract := ToContract(symbol)

	positions, err := c.GetPositions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range positions {
		if positions[i].Symbol == contract {
			return &positions[i], nil
		}
	}
	return nil, ErrNoPosition
}
