package scoring

import (
	"testing"

	"github.com/Alias1177/KuFutures/internal/model"
)

// allTimeframes клонирует один снапшот на все скоринговые таймфреймы
// с одинаковым трендом.
func allTimeframes(trend model.Trend, base model.TimeframeSnapshot) map[model.Timeframe]*model.TimeframeSnapshot {
	snaps := make(map[model.Timeframe]*model.TimeframeSnapshot, 3)
	for _, tf := range []model.Timeframe{model.TF15m, model.TF1h, model.TF4h} {
		c := base
		c.Timeframe = tf
		c.Trend = trend
		snaps[tf] = &c
	}
	return snaps
}

func perfectLong() map[model.Timeframe]*model.TimeframeSnapshot {
	return allTimeframes(model.TrendUp, model.TimeframeSnapshot{
		Close:       105,
		RSI:         60,
		MACDHist:    1.2,
		StochK:      55,
		VolumeRatio: 1.8,
		OBVSlope:    2,
		ADX:         28,
		BBPosition:  0.5,
		VWAP:        100,
	})
}

func perfectShort() map[model.Timeframe]*model.TimeframeSnapshot {
	return allTimeframes(model.TrendDown, model.TimeframeSnapshot{
		Close:       95,
		RSI:         40,
		MACDHist:    -1.2,
		StochK:      45,
		VolumeRatio: 1.8,
		OBVSlope:    -2,
		ADX:         28,
		BBPosition:  0.5,
		VWAP:        100,
	})
}

func TestScorePerfectLong(t *testing.T) {
	result := Score(perfectLong())

	if result.Long != 100 {
		t.Errorf("Long = %d, want 100; детали: %v", result.Long, result.LongDetails)
	}
	// Short всё равно получает направленно-нейтральные очки: Stoch,
	// объём, ADX, BB и RSI в зоне набора.
	if result.Short != 40 {
		t.Errorf("Short = %d, want 40; детали: %v", result.Short, result.ShortDetails)
	}
	if result.Signed != 60 {
		t.Errorf("Signed = %d, want 60", result.Signed)
	}
	if got := Decide(result); got != model.SignalLong {
		t.Errorf("Decide = %v, want LONG", got)
	}
	if len(result.LongDetails) != 11 {
		t.Errorf("ожидалось 11 сработавших строк рубрики, получено %d: %v", len(result.LongDetails), result.LongDetails)
	}
}

func TestScorePerfectShort(t *testing.T) {
	result := Score(perfectShort())

	if result.Short != 100 {
		t.Errorf("Short = %d, want 100; детали: %v", result.Short, result.ShortDetails)
	}
	if result.Long != 40 {
		t.Errorf("Long = %d, want 40; детали: %v", result.Long, result.LongDetails)
	}
	if result.Signed != -60 {
		t.Errorf("Signed = %d, want -60", result.Signed)
	}
	if got := Decide(result); got != model.SignalShort {
		t.Errorf("Decide = %v, want SHORT", got)
	}
}

// Зеркальные рынки должны давать зеркальные счета, иначе рубрика
// перекошена в одну сторону.
func TestScoreMirrorSymmetry(t *testing.T) {
	up := Score(perfectLong())
	down := Score(perfectShort())

	if up.Long != down.Short || up.Short != down.Long {
		t.Errorf("асимметрия рубрики: up %d/%d, down %d/%d", up.Long, up.Short, down.Long, down.Short)
	}
	if up.Signed != -down.Signed {
		t.Errorf("Signed не зеркален: %d vs %d", up.Signed, down.Signed)
	}
}

func TestScoreFlatMarket(t *testing.T) {
	snaps := allTimeframes(model.TrendDown, model.TimeframeSnapshot{
		Close:       100,
		RSI:         50,
		MACDHist:    0,
		StochK:      50,
		VolumeRatio: 1.0,
		OBVSlope:    0,
		ADX:         0,
		BBPosition:  0.5,
		VWAP:        100,
	})

	result := Score(snaps)

	// RSI 50 попадает в зону набора обеих сторон, Stoch и BB
	// направленно-нейтральны.
	if result.Long != 20 {
		t.Errorf("Long = %d, want 20; детали: %v", result.Long, result.LongDetails)
	}
	// Short дополнительно забирает все трендовые очки.
	if result.Short != 50 {
		t.Errorf("Short = %d, want 50; детали: %v", result.Short, result.ShortDetails)
	}
	if got := Decide(result); got != model.SignalNeutral {
		t.Errorf("Decide = %v, want NEUTRAL на плоском рынке", got)
	}
}

func TestScoreWithoutPrimaryTimeframe(t *testing.T) {
	snaps := perfectLong()
	delete(snaps, model.TF1h)

	result := Score(snaps)
	if result.Long != 0 || result.Short != 0 {
		t.Errorf("без 1h счёт должен быть нулевым, получено %d/%d", result.Long, result.Short)
	}
	if got := Decide(result); got != model.SignalNeutral {
		t.Errorf("Decide = %v, want NEUTRAL", got)
	}
}

func TestDecideThresholds(t *testing.T) {
	tests := []struct {
		name     string
		long     int
		short    int
		expected model.Signal
	}{
		{name: "Порог и отрыв выполнены", long: 70, short: 55, expected: model.SignalLong},
		{name: "Отрыв меньше 15", long: 70, short: 56, expected: model.SignalNeutral},
		{name: "Счёт ниже порога", long: 69, short: 0, expected: model.SignalNeutral},
		{name: "Шорт проходит", long: 40, short: 72, expected: model.SignalShort},
		{name: "Пустой рынок", long: 0, short: 0, expected: model.SignalNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := model.ScoreResult{Long: tt.long, Short: tt.short, Signed: tt.long - tt.short}
			if got := Decide(result); got != tt.expected {
				t.Errorf("Decide(%d/%d) = %v, want %v", tt.long, tt.short, got, tt.expected)
			}
		})
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{score: 82, expected: "🔥 отличный сетап"},
		{score: 75, expected: "🔥 отличный сетап"},
		{score: 60, expected: "✅ хороший сетап"},
		{score: 50, expected: "⚠️ слабый сетап"},
		{score: 49, expected: "❌ сетапа нет"},
	}

	for _, tt := range tests {
		if got := Grade(tt.score); got != tt.expected {
			t.Errorf("Grade(%d) = %q, want %q", tt.score, got, tt.expected)
		}
	}
}

func TestInterpretForPosition(t *testing.T) {
	tests := []struct {
		name     string
		result   model.ScoreResult
		side     model.Side
		expected string
	}{
		{name: "Лонг в сильном рынке", result: model.ScoreResult{Long: 78, Short: 30}, side: model.Long, expected: "STRONG BULLISH - HOLD/ADD"},
		{name: "Лонг в вялом рынке", result: model.ScoreResult{Long: 55, Short: 45}, side: model.Long, expected: "WEAK BULLISH - MONITOR"},
		{name: "Лонг против рынка", result: model.ScoreResult{Long: 30, Short: 75}, side: model.Long, expected: "BEARISH - CONSIDER EXIT"},
		{name: "Шорт в сильном рынке", result: model.ScoreResult{Long: 25, Short: 80}, side: model.Short, expected: "STRONG BEARISH - HOLD/ADD"},
		{name: "Шорт против рынка", result: model.ScoreResult{Long: 70, Short: 20}, side: model.Short, expected: "BULLISH - CONSIDER EXIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InterpretForPosition(tt.result, tt.side); got != tt.expected {
				t.Errorf("InterpretForPosition = %q, want %q", got, tt.expected)
			}
		})
	}
}
