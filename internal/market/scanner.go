package market

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/KuFutures/internal/model"
	"github.com/Alias1177/KuFutures/internal/scoring"
)

// TickerSource are the market-data calls the scanner needs besides
// candles.
type TickerSource interface {
	GetTicker(ctx context.Context, symbol string) (*model.Ticker, error)
}

// Scanner прогоняет список символов через рубрику. Результаты идут в
// исходном порядке, битые символы несут Err вместо счёта.
type Scanner struct {
	tickers  TickerSource
	fetcher  *Fetcher
	parallel int
	logger   zerolog.Logger
}

func NewScanner(tickers TickerSource, fetcher *Fetcher, parallel int) *Scanner {
	if parallel < 1 {
		parallel = 1
	}
	return &Scanner{
		tickers:  tickers,
		fetcher:  fetcher,
		parallel: parallel,
		logger:   log.With().Str("component", "scanner").Logger(),
	}
}

func (s *Scanner) Scan(ctx context.Context, symbols []string) []model.Opportunity {
	ops := make([]model.Opportunity, len(symbols))
	sem := make(chan struct{}, s.parallel)
	var wg sync.WaitGroup

	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ops[i] = s.evaluate(ctx, symbol)
			if ops[i].Err != nil {
				s.logger.Warn().Err(ops[i].Err).Str("symbol", symbol).Msg("symbol evaluation failed")
			}
		}(i, symbol)
	}
	wg.Wait()
	return ops
}

func (s *Scanner) evaluate(ctx context.Context, symbol string) model.Opportunity {
	op := model.Opportunity{Symbol: symbol}

	ticker, err := s.tickers.GetTicker(ctx, symbol)
	if err != nil {
		op.Err = err
		return op
	}
	op.Symbol = ticker.Symbol
	op.Price = ticker.Last
	op.Change = ticker.ChangePct

	snaps, err := s.fetcher.MultiSnapshot(ctx, symbol, ScoringTimeframes...)
	if err != nil {
		op.Err = err
		return op
	}
	op.Score = scoring.Score(snaps)
	return op
}
