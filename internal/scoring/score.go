package scoring

import (
	"fmt"

	"github.com/Alias1177/KuFutures/internal/model"
)

// Группы рубрики и их вес. Сумма максимумов ровно 100, чтобы счёт
// читался как проценты.
//
//	Тренд        30  (4h 12, 1h 10, 15m 8)
//	Импульс      25  (RSI 8, MACD 9, Stoch 8)
//	Объём        20  (всплеск 12, OBV 8)
//	Волатильность 15 (ADX 8, позиция в BB 7)
//	Уровень      10  (сторона VWAP 10)
//
// Обе стороны считаются одной и той же таблицей с зеркальными
// условиями, поэтому Long и Short сопоставимы между собой.

// Entry thresholds for Decide.
const (
	entryScore  = 70 // минимальный счёт стороны
	entryMargin = 15 // минимальный отрыв от противоположной стороны
)

// Score runs the rubric for both directions over the scoring
// timeframes (15m, 1h, 4h). The 1h snapshot is the primary one; trend
// points are the only multi-timeframe component.
func Score(snaps map[model.Timeframe]*model.TimeframeSnapshot) model.ScoreResult {
	long, longDetails := scoreSide(snaps, model.Long)
	short, shortDetails := scoreSide(snaps, model.Short)

	return model.ScoreResult{
		Signed:       long - short,
		Long:         long,
		Short:        short,
		LongDetails:  longDetails,
		ShortDetails: shortDetails,
	}
}

func scoreSide(snaps map[model.Timeframe]*model.TimeframeSnapshot, side model.Side) (int, []string) {
	primary := snaps[model.TF1h]
	if primary == nil {
		return 0, nil
	}

	score := 0
	var details []string
	add := func(points int, format string, args ...any) {
		score += points
		details = append(details, fmt.Sprintf(format, args...)+fmt.Sprintf(" (+%d)", points))
	}

	// Тренд: согласованность таймфреймов.
	favorable := model.TrendUp
	cmp := ">"
	if side == model.Short {
		favorable = model.TrendDown
		cmp = "<"
	}
	for _, tw := range []struct {
		tf     model.Timeframe
		points int
	}{
		{model.TF4h, 12},
		{model.TF1h, 10},
		{model.TF15m, 8},
	} {
		if snap := snaps[tw.tf]; snap != nil && snap.Trend == favorable {
			add(tw.points, "%s: EMA20 %s EMA50", tw.tf, cmp)
		}
	}

	// Импульс.
	rsi := primary.RSI
	if side == model.Long {
		switch {
		case rsi > 50 && rsi < 70:
			add(8, "RSI %.1f в импульсной зоне", rsi)
		case rsi > 30 && rsi <= 50:
			add(5, "RSI %.1f в зоне набора", rsi)
		}
	} else {
		switch {
		case rsi > 30 && rsi < 50:
			add(8, "RSI %.1f в импульсной зоне", rsi)
		case rsi >= 50 && rsi < 70:
			add(5, "RSI %.1f в зоне набора", rsi)
		}
	}

	if (side == model.Long && primary.MACDHist > 0) || (side == model.Short && primary.MACDHist < 0) {
		add(9, "гистограмма MACD %s 0", cmp)
	}

	if primary.StochK >= 20 && primary.StochK <= 80 {
		add(8, "Stoch K %.1f вне экстремумов", primary.StochK)
	}

	// Объём.
	switch {
	case primary.VolumeRatio > 1.5:
		add(12, "всплеск объёма x%.1f", primary.VolumeRatio)
	case primary.VolumeRatio > 1.0:
		add(8, "объём выше среднего x%.1f", primary.VolumeRatio)
	}

	if (side == model.Long && primary.OBVSlope > 0) || (side == model.Short && primary.OBVSlope < 0) {
		add(8, "OBV подтверждает направление")
	}

	// Волатильность.
	switch {
	case primary.ADX > 25:
		add(8, "ADX %.1f, сильный тренд", primary.ADX)
	case primary.ADX > 20:
		add(4, "ADX %.1f, тренд формируется", primary.ADX)
	}

	if primary.BBPosition >= 0.3 && primary.BBPosition <= 0.7 {
		add(7, "цена в середине канала BB")
	}

	// Уровень.
	if (side == model.Long && primary.Close > primary.VWAP) || (side == model.Short && primary.Close < primary.VWAP) {
		add(10, "цена на рабочей стороне VWAP")
	}

	return score, details
}

// Decide turns a score into a directional signal. A side must both
// clear the entry bar and beat the opposite side by a clear margin,
// otherwise the market is treated as undecided.
func Decide(result model.ScoreResult) model.Signal {
	switch {
	case result.Long >= entryScore && result.Long-result.Short >= entryMargin:
		return model.SignalLong
	case result.Short >= entryScore && result.Short-result.Long >= entryMargin:
		return model.SignalShort
	default:
		return model.SignalNeutral
	}
}

// Grade renders a one-glance quality mark for a side score.
func Grade(score int) string {
	switch {
	case score >= 75:
		return "🔥 отличный сетап"
	case score >= 60:
		return "✅ хороший сетап"
	case score >= 50:
		return "⚠️ слабый сетап"
	default:
		return "❌ сетапа нет"
	}
}

// InterpretForPosition reads the rubric from the point of view of an
// already open position: how strongly the market still agrees with it.
func InterpretForPosition(result model.ScoreResult, side model.Side) string {
	score := result.Long
	strong, weak, exit := "STRONG BULLISH - HOLD/ADD", "WEAK BULLISH - MONITOR", "BEARISH - CONSIDER EXIT"
	if side == model.Short {
		score = result.Short
		strong, weak, exit = "STRONG BEARISH - HOLD/ADD", "WEAK BEARISH - MONITOR", "BULLISH - CONSIDER EXIT"
	}

	switch {
	case score >= 70:
		return strong
	case score >= 50:
		return weak
	default:
		return exit
	}
}
