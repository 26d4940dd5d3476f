package journal

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// Store represents the PostgreSQL mirror of the journal
type Store struct {
	*sql.DB
}

// NewStore creates a new database connection
func NewStore(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &Store{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trade_journal (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			opened_at TIMESTAMP NOT NULL,
			closed_at TIMESTAMP NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			exit_price DOUBLE PRECISION NOT NULL,
			stop_price DOUBLE PRECISION,
			take_profit_hit INT,
			pnl_usdt DOUBLE PRECISION NOT NULL,
			pnl_pct DOUBLE PRECISION NOT NULL,
			entry_score INT,
			conditions TEXT,
			notes TEXT
		)
	`)

	return err
}

// Insert mirrors one trade. Replays of the same entry are ignored.
func (s *Store) Insert(e Entry) error {
	_, err := s.Exec(`
		INSERT INTO trade_journal (
			id, symbol, side, opened_at, closed_at,
			entry_price, exit_price, stop_price, take_profit_hit,
			pnl_usdt, pnl_pct, entry_score, conditions, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING
	`,
		e.ID, e.Symbol, string(e.Side), e.OpenedAt, e.ClosedAt,
		e.EntryPrice, e.ExitPrice, e.StopPrice, e.TakeProfitHit,
		e.PnlUSDT, e.PnlPct, e.EntryScore, e.Conditions, e.Notes)

	return err
}
