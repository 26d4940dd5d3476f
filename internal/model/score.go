package model

// Signal is the directional recommendation derived from a score.
type Signal string

const (
	SignalLong    Signal = "LONG"
	SignalShort   Signal = "SHORT"
	SignalNeutral Signal = "NEUTRAL"
)

// ScoreResult is the outcome of one rubric evaluation. Signed is
// Long minus Short and is the single source of truth; both per-side
// values and their fired rubric lines are kept for display.
type ScoreResult struct {
	Signed       int      `json:"signed"` // -100..+100, positive = bullish
	Long         int      `json:"long"`   // 0..100
	Short        int      `json:"short"`  // 0..100
	LongDetails  []string `json:"long_details"`
	ShortDetails []string `json:"short_details"`
}

// Opportunity is one scanner result row.
type Opportunity struct {
	Symbol string      `json:"symbol"`
	Price  float64     `json:"price"`
	Change float64     `json:"change_pct"` // 24h
	Score  ScoreResult `json:"score"`
	Err    error       `json:"-"` // fetch/score failure, row excluded from ranking
}
