package indicator

import (
	"math"

	"github.com/Alias1177/KuFutures/internal/model"
)

const (
	DivergenceRegular = "REGULAR"
	DivergenceHidden  = "HIDDEN"
	DivergenceBullish = "BULLISH"
	DivergenceBearish = "BEARISH"
)

// Divergence is a disagreement between price swings and RSI swings.
// Regular divergences hint at reversal, hidden ones at continuation.
type Divergence struct {
	Kind      string
	Direction string
	PriceFrom float64
	PriceTo   float64
	RSIFrom   float64
	RSITo     float64
	Strength  float64
}

// Divergences scans candles for RSI divergences on swing points,
// newest first. strength is the fractal half-width: a swing needs that
// many lower (higher) bars on each side.
func Divergences(candles []model.Candle, rsiPeriod, strength int) []Divergence {
	if len(candles) < 30 || strength <= 0 {
		return nil
	}

	rsi := RSISeries(model.Closes(candles), rsiPeriod)

	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
	}

	priceHighs, _ := swings(highs, strength)
	_, priceLows := swings(lows, strength)
	rsiHighs, rsiLows := swings(rsi, strength)

	var out []Divergence
	out = append(out, divergeOnHighs(highs, rsi, priceHighs, rsiHighs)...)
	out = append(out, divergeOnLows(lows, rsi, priceLows, rsiLows)...)
	return out
}

// swings returns the indexes of local maxima and minima of a series.
func swings(values []float64, strength int) (highs, lows []int) {
	for i := strength; i < len(values)-strength; i++ {
		isHigh, isLow := true, true
		for j := i - strength; j <= i+strength; j++ {
			if j == i {
				continue
			}
			if values[j] > values[i] {
				isHigh = false
			}
			if values[j] < values[i] {
				isLow = false
			}
		}
		if isHigh {
			highs = append(highs, i)
		}
		if isLow {
			lows = append(lows, i)
		}
	}
	return highs, lows
}

func divergeOnHighs(price, rsi []float64, priceSwings, rsiSwings []int) []Divergence {
	var out []Divergence
	if len(priceSwings) < 2 || len(rsiSwings) < 2 {
		return out
	}

	for i := len(priceSwings) - 1; i > 0; i-- {
		p1, p2 := priceSwings[i-1], priceSwings[i]
		r1, r2 := closestSwings(p1, p2, rsiSwings)
		if r1 < 0 {
			continue
		}

		switch {
		// Цена ставит новый максимум, RSI уже нет: разворот вниз.
		case price[p2] > price[p1] && rsi[r2] < rsi[r1]:
			out = append(out, Divergence{
				Kind: DivergenceRegular, Direction: DivergenceBearish,
				PriceFrom: price[p1], PriceTo: price[p2],
				RSIFrom: rsi[r1], RSITo: rsi[r2],
				Strength: divergenceStrength(price[p2]/price[p1], rsi[r1]/rsi[r2]),
			})
		// Максимум ниже, а RSI выше: нисходящий тренд продолжается.
		case price[p2] < price[p1] && rsi[r2] > rsi[r1]:
			out = append(out, Divergence{
				Kind: DivergenceHidden, Direction: DivergenceBearish,
				PriceFrom: price[p1], PriceTo: price[p2],
				RSIFrom: rsi[r1], RSITo: rsi[r2],
				Strength: divergenceStrength(price[p1]/price[p2], rsi[r2]/rsi[r1]),
			})
		}
	}
	return out
}

func divergeOnLows(price, rsi []float64, priceSwings, rsiSwings []int) []Divergence {
	var out []Divergence
	if len(priceSwings) < 2 || len(rsiSwings) < 2 {
		return out
	}

	for i := len(priceSwings) - 1; i > 0; i-- {
		p1, p2 := priceSwings[i-1], priceSwings[i]
		r1, r2 := closestSwings(p1, p2, rsiSwings)
		if r1 < 0 {
			continue
		}

		switch {
		// Цена ставит новый минимум, RSI уже нет: разворот вверх.
		case price[p2] < price[p1] && rsi[r2] > rsi[r1]:
			out = append(out, Divergence{
				Kind: DivergenceRegular, Direction: DivergenceBullish,
				PriceFrom: price[p1], PriceTo: price[p2],
				RSIFrom: rsi[r1], RSITo: rsi[r2],
				Strength: divergenceStrength(price[p1]/price[p2], rsi[r2]/rsi[r1]),
			})
		// Минимум выше, а RSI ниже: восходящий тренд продолжается.
		case price[p2] > price[p1] && rsi[r2] < rsi[r1]:
			out = append(out, Divergence{
				Kind: DivergenceHidden, Direction: DivergenceBullish,
				PriceFrom: price[p1], PriceTo: price[p2],
				RSIFrom: rsi[r1], RSITo: rsi[r2],
				Strength: divergenceStrength(price[p2]/price[p1], rsi[r1]/rsi[r2]),
			})
		}
	}
	return out
}

// closestSwings matches two price swing indexes to their nearest RSI
// swing indexes. Returns -1, -1 unless the matches keep the order.
func closestSwings(p1, p2 int, rsiSwings []int) (int, int) {
	best1, best2 := -1, -1
	dist1, dist2 := math.MaxInt32, math.MaxInt32

	for _, s := range rsiSwings {
		if d := intAbs(s - p1); d < dist1 {
			dist1 = d
			best1 = s
		}
		if d := intAbs(s - p2); d < dist2 {
			dist2 = d
			best2 = s
		}
	}

	if best1 >= 0 && best1 < best2 {
		return best1, best2
	}
	return -1, -1
}

func divergenceStrength(priceRatio, rsiRatio float64) float64 {
	if rsiRatio == 0 {
		return 0
	}
	return math.Abs(priceRatio - rsiRatio)
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
