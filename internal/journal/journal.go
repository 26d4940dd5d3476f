package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/KuFutures/internal/model"
)

// Entry is one closed trade.
type Entry struct {
	ID            string     `json:"id"`
	Symbol        string     `json:"symbol"`
	Side          model.Side `json:"side"`
	OpenedAt      time.Time  `json:"opened_at"`
	ClosedAt      time.Time  `json:"closed_at"`
	EntryPrice    float64    `json:"entry_price"`
	ExitPrice     float64    `json:"exit_price"`
	StopPrice     float64    `json:"stop_price"`
	TakeProfitHit int        `json:"take_profit_hit"` // 0 когда вышли не по тейку
	PnlUSDT       float64    `json:"pnl_usdt"`
	PnlPct        float64    `json:"pnl_pct"`
	EntryScore    int        `json:"entry_score"` // счёт рубрики на входе
	Conditions    string     `json:"conditions"`  // рыночный контекст на входе
	Notes         string     `json:"notes"`
}

// HoldTime returns how long the trade was open.
func (e Entry) HoldTime() time.Duration {
	return e.ClosedAt.Sub(e.OpenedAt)
}

// Journal stores closed trades in a JSON file. The file is the source
// of truth; an optional PostgreSQL mirror serves dashboards.
type Journal struct {
	path   string
	store  *Store
	mu     sync.Mutex
	logger zerolog.Logger
}

func New(path string) *Journal {
	return &Journal{
		path:   path,
		logger: log.With().Str("component", "journal").Logger(),
	}
}

// WithStore attaches a PostgreSQL mirror. Mirror failures are logged,
// never fatal.
func (j *Journal) WithStore(store *Store) *Journal {
	j.store = store
	return j
}

// Log appends a trade. Missing ID and close time are filled in.
func (j *Journal) Log(e Entry) (Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if e.ID == "" {
		e.ID = fmt.Sprintf("T-%d", time.Now().UnixNano())
	}
	if e.ClosedAt.IsZero() {
		e.ClosedAt = time.Now()
	}

	entries, err := j.load()
	if err != nil {
		return Entry{}, err
	}
	entries = append(entries, e)
	if err := j.save(entries); err != nil {
		return Entry{}, err
	}

	if j.store != nil {
		if err := j.store.Insert(e); err != nil {
			j.logger.Warn().Err(err).Str("id", e.ID).Msg("postgres mirror failed")
		}
	}

	j.logger.Info().Str("id", e.ID).Str("symbol", e.Symbol).Float64("pnl_usdt", e.PnlUSDT).Msg("trade recorded")
	return e, nil
}

// List returns every recorded trade, oldest first.
func (j *Journal) List() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.load()
}

func (j *Journal) load() ([]Entry, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read journal")
	}

	var entries []Entry
	if err := sonic.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "journal file %s is corrupted", j.path)
	}
	return entries, nil
}

func (j *Journal) save(entries []Entry) error {
	data, err := sonic.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal journal")
	}
	return errors.Wrap(os.WriteFile(j.path, data, 0o644), "write journal")
}

// Stats is the aggregate view over a period.
type Stats struct {
	Trades         int
	Wins           int
	Losses         int
	WinRatePct     float64
	TotalPnlUSDT   float64
	AvgPnlUSDT     float64
	AvgWinUSDT     float64
	AvgLossUSDT    float64
	ProfitFactor   float64 // 0 когда убыточных сделок нет
	BestPnlUSDT    float64
	WorstPnlUSDT   float64
	AvgHoldMinutes float64
	AvgEntryScore  float64 // по сделкам с заполненным счётом
	BySymbol       map[string]SymbolTally
}

// SymbolTally is the per-symbol slice of the same период.
type SymbolTally struct {
	Trades  int
	Wins    int
	PnlUSDT float64
}

// Stats aggregates trades closed in the last days. days <= 0 takes
// everything.
func (j *Journal) Stats(days int) (*Stats, error) {
	entries, err := j.List()
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if days > 0 {
		cutoff = time.Now().AddDate(0, 0, -days)
	}

	stats := &Stats{BySymbol: map[string]SymbolTally{}}
	grossWin, grossLoss, holdMinutes := 0.0, 0.0, 0.0
	scored, scoreSum := 0, 0.0

	for _, e := range entries {
		if !cutoff.IsZero() && e.ClosedAt.Before(cutoff) {
			continue
		}

		stats.Trades++
		stats.TotalPnlUSDT += e.PnlUSDT
		holdMinutes += e.HoldTime().Minutes()
		if e.EntryScore > 0 {
			scored++
			scoreSum += float64(e.EntryScore)
		}

		tally := stats.BySymbol[e.Symbol]
		tally.Trades++
		tally.PnlUSDT += e.PnlUSDT
		if e.PnlUSDT > 0 {
			tally.Wins++
		}
		stats.BySymbol[e.Symbol] = tally

		if stats.Trades == 1 {
			stats.BestPnlUSDT = e.PnlUSDT
			stats.WorstPnlUSDT = e.PnlUSDT
		} else {
			if e.PnlUSDT > stats.BestPnlUSDT {
				stats.BestPnlUSDT = e.PnlUSDT
			}
			if e.PnlUSDT < stats.WorstPnlUSDT {
				stats.WorstPnlUSDT = e.PnlUSDT
			}
		}

		switch {
		case e.PnlUSDT > 0:
			stats.Wins++
			grossWin += e.PnlUSDT
		case e.PnlUSDT < 0:
			stats.Losses++
			grossLoss += -e.PnlUSDT
		}
	}

	if stats.Trades == 0 {
		return stats, nil
	}

	stats.WinRatePct = float64(stats.Wins) / float64(stats.Trades) * 100
	stats.AvgPnlUSDT = stats.TotalPnlUSDT / float64(stats.Trades)
	stats.AvgHoldMinutes = holdMinutes / float64(stats.Trades)
	if scored > 0 {
		stats.AvgEntryScore = scoreSum / float64(scored)
	}
	if stats.Wins > 0 {
		stats.AvgWinUSDT = grossWin / float64(stats.Wins)
	}
	if stats.Losses > 0 {
		stats.AvgLossUSDT = grossLoss / float64(stats.Losses)
		stats.ProfitFactor = grossWin / grossLoss
	}

	return stats, nil
}

// ExportCSV writes every trade as CSV.
func (j *Journal) ExportCSV(w io.Writer) error {
	entries, err := j.List()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"id", "symbol", "side", "opened_at", "closed_at",
		"entry_price", "exit_price", "stop_price", "take_profit_hit",
		"pnl_usdt", "pnl_pct", "hold_minutes", "entry_score", "conditions", "notes",
	}); err != nil {
		return errors.Wrap(err, "write csv header")
	}

	for _, e := range entries {
		record := []string{
			e.ID,
			e.Symbol,
			string(e.Side),
			e.OpenedAt.Format(time.RFC3339),
			e.ClosedAt.Format(time.RFC3339),
			strconv.FormatFloat(e.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(e.ExitPrice, 'f', -1, 64),
			strconv.FormatFloat(e.StopPrice, 'f', -1, 64),
			strconv.Itoa(e.TakeProfitHit),
			strconv.FormatFloat(e.PnlUSDT, 'f', -1, 64),
			strconv.FormatFloat(e.PnlPct, 'f', -1, 64),
			strconv.FormatFloat(e.HoldTime().Minutes(), 'f', 1, 64),
			strconv.Itoa(e.EntryScore),
			e.Conditions,
			e.Notes,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "write csv record")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}
