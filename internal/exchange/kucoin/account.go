package kucoin

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type accountOverview struct {
	AccountEquity    float64 `json:"accountEquity"`
	AvailableBalance float64 `json:"availableBalance"`
	UnrealisedPNL    float64 `json:"unrealisedPNL"`
	MarginBalance    float64 `json:"marginBalance"`
}

// GetAvailableBalance returns the free USDT margin balance.
func (c *Client) GetAvailableBalance(ctx context.Context) (float64, error) {
	data, err := c.get(ctx, "/api/v1/account-overview?currency=USDT", true)
	if err != nil {
		return 0, err
	}

	var overview accountOverview
	if err := sonic.Unmarshal(data, &overview); err != nil {
		return 0, errors.Wrap(err, "decode account overview")
	}
	return overview.AvailableBalance, nil
}
