package trailing

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/KuFutures/internal/exchange/kucoin"
	"github.com/Alias1177/KuFutures/internal/model"
)

// Exchange is the slice of the exchange client the runner needs.
type Exchange interface {
	GetPosition(ctx context.Context, symbol string) (*model.Position, error)
	CloseMarket(ctx context.Context, pos model.Position) (string, error)
}

// SnapshotSource computes indicator snapshots for the stop math.
type SnapshotSource interface {
	Snapshot(ctx context.Context, symbol string, tf model.Timeframe) (*model.TimeframeSnapshot, error)
}

// Notifier receives session milestones. Optional: stop moves are only
// logged, иначе телеграм зальёт спамом на каждом опросе.
type Notifier interface {
	TrailingActivated(symbol string, price, stop float64)
	StopHit(symbol string, price, stop float64)
	CloseResult(symbol, orderID string, err error)
	ClosedExternally(symbol string)
}

// Runner drives one trailing session: polls the exchange, feeds ticks
// into the machine and closes the position when the stop fires.
type Runner struct {
	exchange  Exchange
	snapshots SnapshotSource
	policy    Policy
	machine   *Machine
	symbol    string
	interval  time.Duration
	prices    <-chan float64
	notify    Notifier
	lastSnap  *model.TimeframeSnapshot
	logger    zerolog.Logger
}

type RunnerOptions struct {
	Exchange  Exchange
	Snapshots SnapshotSource
	Policy    Policy
	Machine   *Machine
	Symbol    string        // contract, например XBTUSDTM
	Interval  time.Duration // 0 => 15s
	Prices    <-chan float64
	Notify    Notifier
}

func NewRunner(opts RunnerOptions) *Runner {
	interval := opts.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Runner{
		exchange:  opts.Exchange,
		snapshots: opts.Snapshots,
		policy:    opts.Policy,
		machine:   opts.Machine,
		symbol:    opts.Symbol,
		interval:  interval,
		prices:    opts.Prices,
		notify:    opts.Notify,
		logger:    log.With().Str("component", "trailing").Str("symbol", opts.Symbol).Logger(),
	}
}

// Run blocks until the session reaches a terminal state or the context
// is cancelled.
func (r *Runner) Run(ctx context.Context) (State, error) {
	r.logger.Info().
		Str("state", string(r.machine.State())).
		Float64("entry", r.machine.Entry()).
		Float64("stop", r.machine.Stop()).
		Float64("activation", r.machine.Activation()).
		Msg("trailing session started")

	// Первый опрос сразу, не дожидаясь тикера.
	if r.poll(ctx) {
		return r.machine.State(), nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return r.machine.State(), ctx.Err()

		case price, ok := <-r.prices:
			if !ok {
				// Стрим закрылся, остаёмся на REST-опросе.
				r.prices = nil
				continue
			}
			if r.onStreamPrice(ctx, price) {
				return r.machine.State(), nil
			}

		case <-ticker.C:
			if r.poll(ctx) {
				return r.machine.State(), nil
			}
		}
	}
}

// poll synchronizes with the exchange: live position, fresh snapshot,
// one tick. Returns true when the session is finished.
func (r *Runner) poll(ctx context.Context) bool {
	pos, err := r.exchange.GetPosition(ctx, r.symbol)
	if err != nil {
		if errors.Is(err, kucoin.ErrNoPosition) {
			r.machine.MarkClosedExternally()
			r.logger.Info().Msg("position closed externally, stopping")
			if r.notify != nil {
				r.notify.ClosedExternally(r.symbol)
			}
			return true
		}
		// Сетевые сбои сессию не роняют.
		r.logger.Warn().Err(err).Msg("position poll failed")
		return false
	}

	snap, err := r.snapshots.Snapshot(ctx, r.symbol, model.TF15m)
	if err != nil {
		r.logger.Warn().Err(err).Msg("snapshot failed")
		return false
	}
	r.lastSnap = snap

	return r.applyTick(ctx, pos.MarkPrice)
}

// onStreamPrice handles a websocket tick between polls using the last
// computed snapshot.
func (r *Runner) onStreamPrice(ctx context.Context, price float64) bool {
	if r.lastSnap == nil {
		return false
	}
	return r.applyTick(ctx, price)
}

func (r *Runner) applyTick(ctx context.Context, price float64) bool {
	desired, reasons := r.policy.DesiredStop(r.machine.Side(), price, r.lastSnap)

	switch r.machine.Tick(price, desired) {
	case EventActivated:
		r.logger.Info().
			Float64("price", price).
			Float64("stop", r.machine.Stop()).
			Strs("reasons", reasons).
			Msg("trailing activated")
		if r.notify != nil {
			r.notify.TrailingActivated(r.symbol, price, r.machine.Stop())
		}

	case EventStopMoved:
		r.logger.Info().
			Float64("price", price).
			Float64("stop", r.machine.Stop()).
			Strs("reasons", reasons).
			Msg("stop moved")

	case EventStopHit:
		r.logger.Warn().
			Float64("price", price).
			Float64("stop", r.machine.Stop()).
			Msg("stop hit, closing position")
		if r.notify != nil {
			r.notify.StopHit(r.symbol, price, r.machine.Stop())
		}
		r.closePosition(ctx)
		return true

	default:
		r.logger.Debug().
			Float64("price", price).
			Float64("stop", r.machine.Stop()).
			Str("state", string(r.machine.State())).
			Msg("tick")
	}
	return false
}

// closePosition market-closes after a stop hit. One attempt only: a
// retry risks a duplicate order, so on failure the operator closes by
// hand.
func (r *Runner) closePosition(ctx context.Context) {
	pos, err := r.exchange.GetPosition(ctx, r.symbol)
	if err != nil {
		if errors.Is(err, kucoin.ErrNoPosition) {
			r.logger.Info().Msg("position already gone")
			return
		}
		r.logger.Error().Err(err).Msg("cannot fetch position for close, CLOSE MANUALLY")
		if r.notify != nil {
			r.notify.CloseResult(r.symbol, "", err)
		}
		return
	}

	orderID, err := r.exchange.CloseMarket(ctx, *pos)
	if err != nil {
		r.logger.Error().Err(err).Msg("market close failed, CLOSE MANUALLY")
		if r.notify != nil {
			r.notify.CloseResult(r.symbol, "", err)
		}
		return
	}
	r.logger.Info().Str("order_id", orderID).Msg("position closed")
	if r.notify != nil {
		r.notify.CloseResult(r.symbol, orderID, nil)
	}
}
