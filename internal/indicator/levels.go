package indicator

import (
	"math"
	"sort"

	"github.com/Alias1177/KuFutures/internal/model"
)

// Candles needed before the level scan makes sense.
const minLevelCandles = 20

// SupportResistance clusters fractal swing points into horizontal
// levels around the current price. The clustering tolerance is relative
// (0.1% of the last close), so the same scan works for BTC and for
// sub-cent contracts. Returns up to maxLevels of each side, nearest
// level first.
func SupportResistance(candles []model.Candle, maxLevels int) (support, resistance []float64) {
	if len(candles) < minLevelCandles {
		return nil, nil
	}
	if maxLevels <= 0 {
		maxLevels = 3
	}

	last := candles[len(candles)-1].Close
	tolerance := last * 0.001
	if tolerance <= 0 {
		return nil, nil
	}

	// Свинг-точки с округлением к ближайшему уровню, чтобы повторные
	// касания складывались, а не плодили соседние уровни.
	touches := make(map[float64]int)
	for i := 2; i < len(candles)-2; i++ {
		c := candles[i]
		if c.Low < candles[i-1].Low && c.Low < candles[i-2].Low &&
			c.Low < candles[i+1].Low && c.Low < candles[i+2].Low {
			touches[math.Round(c.Low/tolerance)*tolerance]++
		}
		if c.High > candles[i-1].High && c.High > candles[i-2].High &&
			c.High > candles[i+1].High && c.High > candles[i+2].High {
			touches[math.Round(c.High/tolerance)*tolerance]++
		}
	}

	// Недавние закрытия возле уровня усиливают его.
	for i := len(candles) - 10; i < len(candles); i++ {
		for level := range touches {
			if math.Abs(candles[i].Close-level) < tolerance*2 {
				touches[level]++
			}
		}
	}

	for level := range touches {
		switch {
		case level < last:
			support = append(support, level)
		case level > last:
			resistance = append(resistance, level)
		}
	}

	// Ближайшие к цене уровни интереснее дальних.
	sort.Sort(sort.Reverse(sort.Float64Slice(support)))
	sort.Float64s(resistance)

	if len(support) > maxLevels {
		support = support[:maxLevels]
	}
	if len(resistance) > maxLevels {
		resistance = resistance[:maxLevels]
	}
	return support, resistance
}
