package kucoin

import (
	"context"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// bullet is the websocket connection grant from /api/v1/bullet-public.
type bullet struct {
	Token           string `json:"token"`
	InstanceServers []struct {
		Endpoint     string `json:"endpoint"`
		PingInterval int64  `json:"pingInterval"` // ms
	} `json:"instanceServers"`
}

type wsFrame struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
	Data  struct {
		Price string `json:"price"`
	} `json:"data"`
}

// TickerStream delivers live trade prices for one contract over the
// public websocket. The trailing runner uses it for stop checks between
// REST polls.
type TickerStream struct {
	client   *Client
	contract string
	prices   chan float64
	logger   zerolog.Logger
}

// NewTickerStream prepares a stream for one symbol. Call Run to start it.
func (c *Client) NewTickerStream(symbol string) *TickerStream {
	return &TickerStream{
		client:   c,
		contract: ToContract(symbol),
		prices:   make(chan float64, 16),
		logger:   log.With().Str("component", "kucoin-ws").Logger(),
	}
}

// Prices is the live price feed. Closed when Run returns.
func (s *TickerStream) Prices() <-chan float64 {
	return s.prices
}

// Run connects, subscribes and pumps prices until ctx is done.
// A dropped connection reconnects after a short pause.
func (s *TickerStream) Run(ctx context.Context) {
	defer close(s.prices)

	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.connectAndListen(ctx); err != nil {
			s.logger.Error().Err(err).Msg("websocket session ended")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(3 * time.Second):
			s.logger.Info().Msg("reconnecting websocket")
		}
	}
}

func (s *TickerStream) connectAndListen(ctx context.Context) error {
	// Public token grant, no auth needed.
	data, err := s.client.post(ctx, "/api/v1/bullet-public", nil, false)
	if err != nil {
		return errors.Wrap(err, "request websocket token")
	}

	var grant bullet
	if err := sonic.Unmarshal(data, &grant); err != nil {
		return errors.Wrap(err, "decode websocket token")
	}
	if len(grant.InstanceServers) == 0 {
		return errors.New("no websocket instance servers")
	}
	server := grant.InstanceServers[0]

	url := server.Endpoint + "?token=" + grant.Token +
		"&connectId=" + strconv.FormatInt(time.Now().UnixNano(), 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return errors.Wrap(err, "dial websocket")
	}
	defer conn.Close()

	topic := "/contractMarket/ticker:" + s.contract
	sub := map[string]interface{}{
		"id":       time.Now().UnixMilli(),
		"type":     "subscribe",
		"topic":    topic,
		"response": true,
	}
	if err := conn.WriteJSON(sub); err != nil {
		return errors.Wrap(err, "subscribe")
	}
	s.logger.Info().Str("topic", topic).Msg("websocket subscribed")

	pingInterval := time.Duration(server.PingInterval) * time.Millisecond
	if pingInterval <= 0 {
		pingInterval = 18 * time.Second
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close() // unblocks ReadMessage
				return
			case <-done:
				return
			case <-ticker.C:
				ping := map[string]interface{}{"id": time.Now().UnixMilli(), "type": "ping"}
				if err := conn.WriteJSON(ping); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "read message")
		}

		var frame wsFrame
		if err := sonic.Unmarshal(msg, &frame); err != nil {
			continue
		}
		if frame.Type != "message" {
			continue
		}
		price, err := strconv.ParseFloat(frame.Data.Price, 64)
		if err != nil || price <= 0 {
			continue
		}

		select {
		case s.prices <- price:
		default: // consumer is behind, drop the tick
		}
	}
}
