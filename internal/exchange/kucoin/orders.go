package kucoin

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/Alias1177/KuFutures/internal/model"
)

type closeOrder struct {
	ClientOid  string `json:"clientOid"`
	Side       string `json:"side"`
	Symbol     string `json:"symbol"`
	Type       string `json:"type"`
	Size       int64  `json:"size"`
	ReduceOnly bool   `json:"reduceOnly"`
}

type orderResult struct {
	OrderID string `json:"orderId"`
}

// CloseMarket closes the remaining position with a reduce-only market
// order on the opposite side. Best effort: the caller decides what to
// tell the operator when it fails, it is never retried here.
func (c *Client) CloseMarket(ctx context.Context, pos model.Position) (string, error) {
	side := "sell"
	if pos.Side == model.Short {
		side = "buy"
	}

	payload, err := sonic.Marshal(closeOrder{
		ClientOid:  fmt.Sprintf("close_%d", time.Now().UnixMilli()),
		Side:       side,
		Symbol:     pos.Symbol,
		Type:       "market",
		Size:       int64(pos.Size),
		ReduceOnly: true,
	})
	if err != nil {
		return "", errors.Wrap(err, "encode close order")
	}

	data, err := c.post(ctx, "/api/v1/orders", payload, true)
	if err != nil {
		return "", err
	}

	var result orderResult
	if err := sonic.Unmarshal(data, &result); err != nil {
		return "", errors.Wrap(err, "decode order result")
	}

	c.logger.Info().
		Str("symbol", pos.Symbol).
		Str("side", side).
		Float64("size", pos.Size).
		Str("order_id", result.OrderID).
		Msg("close order placed")

	return result.OrderID, nil
}
