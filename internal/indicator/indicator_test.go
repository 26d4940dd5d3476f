package indicator

import (
	"math"
	"testing"

	"github.com/Alias1177/KuFutures/internal/model"
)

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		check  func(t *testing.T, rsi float64)
	}{
		{
			name:   "Недостаточно данных",
			closes: []float64{100, 101},
			check: func(t *testing.T, rsi float64) {
				if rsi != 50.0 {
					t.Errorf("RSI() = %v, want 50", rsi)
				}
			},
		},
		{
			name:   "Константная серия",
			closes: constantSeries(50, 100.0),
			check: func(t *testing.T, rsi float64) {
				if rsi != 50.0 {
					t.Errorf("RSI() = %v, want neutral 50", rsi)
				}
			},
		},
		{
			name:   "Только рост",
			closes: linearSeries(50, 100.0, 1.0),
			check: func(t *testing.T, rsi float64) {
				if rsi < 99.0 {
					t.Errorf("RSI() = %v, want > 99 on pure gains", rsi)
				}
			},
		},
		{
			name:   "Только падение",
			closes: linearSeries(50, 200.0, -1.0),
			check: func(t *testing.T, rsi float64) {
				if rsi > 1.0 {
					t.Errorf("RSI() = %v, want < 1 on pure losses", rsi)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, RSI(tt.closes, 14))
		})
	}
}

func TestEMAConstantSeries(t *testing.T) {
	closes := constantSeries(60, 123.45)
	ema := EMA(closes, 20)

	if len(ema) != len(closes) {
		t.Fatalf("EMA() len = %d, want %d", len(ema), len(closes))
	}
	for i, v := range ema {
		if math.Abs(v-123.45) > 1e-9 {
			t.Fatalf("EMA()[%d] = %v, want the constant 123.45", i, v)
		}
	}
}

func TestEMASeededFromFirstValue(t *testing.T) {
	closes := []float64{10, 20, 30, 40}
	ema := EMA(closes, 3)
	if ema[0] != 10 {
		t.Errorf("EMA()[0] = %v, want first value 10", ema[0])
	}
	// k = 0.5 for period 3: 10 -> 15 -> 22.5 -> 31.25
	want := []float64{10, 15, 22.5, 31.25}
	for i := range want {
		if math.Abs(ema[i]-want[i]) > 1e-9 {
			t.Errorf("EMA()[%d] = %v, want %v", i, ema[i], want[i])
		}
	}
}

func TestMACDHistogramIdentity(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/7.0) + float64(i)*0.3
	}

	line, signal, hist := MACD(closes, 12, 26, 9)
	if math.Abs(hist-(line-signal)) > 1e-12 {
		t.Errorf("MACD histogram = %v, want line-signal = %v", hist, line-signal)
	}
}

func TestMACDUptrendPositive(t *testing.T) {
	closes := linearSeries(120, 100.0, 1.0)
	line, _, hist := MACD(closes, 12, 26, 9)
	if line <= 0 {
		t.Errorf("MACD line = %v, want > 0 on a steady uptrend", line)
	}
	if hist < 0 {
		t.Errorf("MACD hist = %v, want >= 0 on a steady uptrend", hist)
	}
}

func TestOBVMonotonic(t *testing.T) {
	tests := []struct {
		name    string
		candles []model.Candle
		rising  bool
	}{
		{
			name: "Монотонный рост",
			candles: generateTestCandles(50, func(i int) model.Candle {
				return model.Candle{Close: 100 + float64(i), Volume: 1000}
			}),
			rising: true,
		},
		{
			name: "Монотонное падение",
			candles: generateTestCandles(50, func(i int) model.Candle {
				return model.Candle{Close: 200 - float64(i), Volume: 1000}
			}),
			rising: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := OBVSeries(tt.candles)
			for i := 1; i < len(series); i++ {
				if tt.rising && series[i] < series[i-1] {
					t.Fatalf("OBV[%d] = %v < OBV[%d] = %v on rising closes", i, series[i], i-1, series[i-1])
				}
				if !tt.rising && series[i] > series[i-1] {
					t.Fatalf("OBV[%d] = %v > OBV[%d] = %v on falling closes", i, series[i], i-1, series[i-1])
				}
			}
		})
	}
}

func TestATRConstantSeries(t *testing.T) {
	candles := generateTestCandles(40, func(i int) model.Candle {
		return model.Candle{Open: 100, High: 100, Low: 100, Close: 100, Volume: 500}
	})
	if atr := ATR(candles, 14); atr != 0 {
		t.Errorf("ATR() = %v, want 0 on a constant series", atr)
	}
}

func TestATRInsufficientData(t *testing.T) {
	candles := generateTestCandles(5, func(i int) model.Candle {
		return model.Candle{High: 110, Low: 90, Close: 100}
	})
	if atr := ATR(candles, 14); atr != 0 {
		t.Errorf("ATR() = %v, want degraded 0", atr)
	}
}

func TestBollingerConstantSeries(t *testing.T) {
	closes := constantSeries(40, 250.0)
	upper, middle, lower := Bollinger(closes, 20, 2.0)

	if upper != 250.0 || middle != 250.0 || lower != 250.0 {
		t.Errorf("Bollinger() = (%v, %v, %v), want all 250", upper, middle, lower)
	}
	if w := BollingerWidth(upper, middle, lower); w != 0 {
		t.Errorf("BollingerWidth() = %v, want 0", w)
	}
	if p := BollingerPosition(250.0, upper, lower); p != 0.5 {
		t.Errorf("BollingerPosition() = %v, want 0.5 on a collapsed band", p)
	}
}

func TestBollingerPosition(t *testing.T) {
	if p := BollingerPosition(110, 110, 90); math.Abs(p-1.0) > 1e-9 {
		t.Errorf("BollingerPosition(at upper) = %v, want 1", p)
	}
	if p := BollingerPosition(90, 110, 90); math.Abs(p) > 1e-9 {
		t.Errorf("BollingerPosition(at lower) = %v, want 0", p)
	}
}

func TestStochRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		check  func(t *testing.T, k, d float64)
	}{
		{
			name:   "Константная серия",
			closes: constantSeries(60, 100.0),
			check: func(t *testing.T, k, d float64) {
				if k != 50.0 || d != 50.0 {
					t.Errorf("StochRSI() = (%v, %v), want neutral (50, 50)", k, d)
				}
			},
		},
		{
			name:   "Разворот вверх после падения",
			closes: vShape(60, 150.0),
			check: func(t *testing.T, k, d float64) {
				if k < 50.0 {
					t.Errorf("StochRSI() K = %v, want > 50 after recovery", k)
				}
			},
		},
		{
			name:   "Разворот вниз после роста",
			closes: invertedVShape(60, 100.0),
			check: func(t *testing.T, k, d float64) {
				if k > 50.0 {
					t.Errorf("StochRSI() K = %v, want < 50 after rollover", k)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, d := StochRSI(tt.closes, 14, 3, 3)
			if k < 0 || k > 100 || d < 0 || d > 100 {
				t.Fatalf("StochRSI() = (%v, %v), out of 0-100", k, d)
			}
			tt.check(t, k, d)
		})
	}
}

func TestADX(t *testing.T) {
	t.Run("Недостаточно данных", func(t *testing.T) {
		candles := generateTestCandles(20, func(i int) model.Candle {
			return model.Candle{High: 110, Low: 90, Close: 100}
		})
		adx, pdi, mdi := ADX(candles, 14)
		if adx != 0 || pdi != 0 || mdi != 0 {
			t.Errorf("ADX() = (%v, %v, %v), want degraded zeros", adx, pdi, mdi)
		}
	})

	t.Run("Сильный восходящий тренд", func(t *testing.T) {
		candles := generateTestCandles(60, func(i int) model.Candle {
			base := 100 + float64(i)*2
			return model.Candle{Open: base, High: base + 3, Low: base - 1, Close: base + 2, Volume: 1000}
		})
		adx, pdi, mdi := ADX(candles, 14)
		if adx < 25 {
			t.Errorf("ADX() = %v, want > 25 on a strong trend", adx)
		}
		if pdi <= mdi {
			t.Errorf("+DI = %v <= -DI = %v on an uptrend", pdi, mdi)
		}
	})

	t.Run("Сильный нисходящий тренд", func(t *testing.T) {
		candles := generateTestCandles(60, func(i int) model.Candle {
			base := 300 - float64(i)*2
			return model.Candle{Open: base, High: base + 1, Low: base - 3, Close: base - 2, Volume: 1000}
		})
		adx, pdi, mdi := ADX(candles, 14)
		if adx < 25 {
			t.Errorf("ADX() = %v, want > 25 on a strong downtrend", adx)
		}
		if mdi <= pdi {
			t.Errorf("-DI = %v <= +DI = %v on a downtrend", mdi, pdi)
		}
	})
}

func TestVWAP(t *testing.T) {
	t.Run("Нулевой объём", func(t *testing.T) {
		candles := generateTestCandles(30, func(i int) model.Candle {
			return model.Candle{High: 101, Low: 99, Close: 100, Volume: 0}
		})
		if v := VWAP(candles); v != 100 {
			t.Errorf("VWAP() = %v, want last close 100 without volume", v)
		}
	})

	t.Run("В границах диапазона", func(t *testing.T) {
		candles := generateTestCandles(30, func(i int) model.Candle {
			base := 100 + float64(i%5)
			return model.Candle{High: base + 2, Low: base - 2, Close: base, Volume: float64(1000 + i*10)}
		})
		v := VWAP(candles)
		if v < 98 || v > 106 {
			t.Errorf("VWAP() = %v, outside the traded range", v)
		}
	})
}

func TestVolumeRatio(t *testing.T) {
	tests := []struct {
		name    string
		candles []model.Candle
		check   func(t *testing.T, ratio float64)
	}{
		{
			name: "Нулевой объём",
			candles: generateTestCandles(30, func(i int) model.Candle {
				return model.Candle{Close: 100, Volume: 0}
			}),
			check: func(t *testing.T, ratio float64) {
				if ratio != 1.0 {
					t.Errorf("VolumeRatio() = %v, want neutral 1.0", ratio)
				}
			},
		},
		{
			name: "Постоянный объём",
			candles: generateTestCandles(30, func(i int) model.Candle {
				return model.Candle{Close: 100, Volume: 1000}
			}),
			check: func(t *testing.T, ratio float64) {
				if math.Abs(ratio-1.0) > 1e-9 {
					t.Errorf("VolumeRatio() = %v, want 1.0", ratio)
				}
			},
		},
		{
			name: "Всплеск объёма",
			candles: generateTestCandles(30, func(i int) model.Candle {
				vol := 1000.0
				if i == 29 {
					vol = 5000.0
				}
				return model.Candle{Close: 100, Volume: vol}
			}),
			check: func(t *testing.T, ratio float64) {
				if ratio < 1.5 {
					t.Errorf("VolumeRatio() = %v, want > 1.5 on a spike", ratio)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, VolumeRatio(tt.candles, 20))
		})
	}
}

func generateTestCandles(n int, generator func(int) model.Candle) []model.Candle {
	candles := make([]model.Candle, n)
	for i := 0; i < n; i++ {
		candles[i] = generator(i)
		candles[i].Timestamp = int64(i) * 60_000
	}
	return candles
}

func constantSeries(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func linearSeries(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// vShape falls for the first half, recovers unevenly (keeps RSI off
// saturation) and finishes on a strong run up.
func vShape(n int, start float64) []float64 {
	out := make([]float64, n)
	price := start
	for i := 0; i < n; i++ {
		switch {
		case i < n/2:
			price -= 1
		case i >= n-5:
			price += 4
		default:
			if (i-n/2)%3 == 2 {
				price -= 1
			} else {
				price += 3
			}
		}
		out[i] = price
	}
	return out
}

// invertedVShape rallies for the first half and rolls over the same way.
func invertedVShape(n int, start float64) []float64 {
	out := make([]float64, n)
	price := start
	for i := 0; i < n; i++ {
		switch {
		case i < n/2:
			price += 1
		case i >= n-5:
			price -= 4
		default:
			if (i-n/2)%3 == 2 {
				price += 1
			} else {
				price -= 3
			}
		}
		out[i] = price
	}
	return out
}

// trendCandles builds a candle path from per-bar close deltas, с High
// и Low на полпункта от закрытия.
func trendCandles(start float64, deltas []float64) []model.Candle {
	candles := make([]model.Candle, len(deltas)+1)
	price := start
	for i := range candles {
		if i > 0 {
			price += deltas[i-1]
		}
		candles[i] = model.Candle{
			Timestamp: int64(i) * 60_000,
			Open:      price, Close: price,
			High: price + 0.5, Low: price - 0.5,
			Volume: 1000,
		}
	}
	return candles
}

func TestDivergencesRegularBullish(t *testing.T) {
	// Резкое падение до первого дна, отскок, затем вялое пилообразное
	// сползание к более низкому дну: цена ниже, RSI выше.
	var deltas []float64
	for i := 0; i < 20; i++ {
		deltas = append(deltas, -1.0)
	}
	for i := 0; i < 10; i++ {
		deltas = append(deltas, 1.0)
	}
	for i := 0; i < 10; i++ {
		deltas = append(deltas, -1.6, 0.4)
	}
	for i := 0; i < 6; i++ {
		deltas = append(deltas, 1.0)
	}

	divs := Divergences(trendCandles(110, deltas), 14, 3)
	if len(divs) != 1 {
		t.Fatalf("len = %d, want 1: %+v", len(divs), divs)
	}
	d := divs[0]
	if d.Kind != DivergenceRegular || d.Direction != DivergenceBullish {
		t.Errorf("дивергенция %s %s, want REGULAR BULLISH", d.Kind, d.Direction)
	}
	if d.PriceTo >= d.PriceFrom {
		t.Errorf("цена должна ставить более низкий минимум: %v -> %v", d.PriceFrom, d.PriceTo)
	}
	if d.RSITo <= d.RSIFrom {
		t.Errorf("RSI должен ставить более высокий минимум: %v -> %v", d.RSIFrom, d.RSITo)
	}
}

func TestDivergencesRegularBearish(t *testing.T) {
	// Зеркальный сценарий: новый максимум цены на угасающем RSI.
	var deltas []float64
	for i := 0; i < 20; i++ {
		deltas = append(deltas, 1.0)
	}
	for i := 0; i < 10; i++ {
		deltas = append(deltas, -1.0)
	}
	for i := 0; i < 10; i++ {
		deltas = append(deltas, 1.6, -0.4)
	}
	for i := 0; i < 6; i++ {
		deltas = append(deltas, -1.0)
	}

	divs := Divergences(trendCandles(90, deltas), 14, 3)
	if len(divs) != 1 {
		t.Fatalf("len = %d, want 1: %+v", len(divs), divs)
	}
	d := divs[0]
	if d.Kind != DivergenceRegular || d.Direction != DivergenceBearish {
		t.Errorf("дивергенция %s %s, want REGULAR BEARISH", d.Kind, d.Direction)
	}
	if d.PriceTo <= d.PriceFrom {
		t.Errorf("цена должна ставить более высокий максимум: %v -> %v", d.PriceFrom, d.PriceTo)
	}
	if d.RSITo >= d.RSIFrom {
		t.Errorf("RSI должен ставить более низкий максимум: %v -> %v", d.RSIFrom, d.RSITo)
	}
}

func TestDivergencesDegenerateInput(t *testing.T) {
	if divs := Divergences(trendCandles(100, make([]float64, 10)), 14, 3); divs != nil {
		t.Errorf("короткая серия: %+v", divs)
	}

	flat := generateTestCandles(60, func(i int) model.Candle {
		return model.Candle{Open: 100, High: 100, Low: 100, Close: 100, Volume: 1000}
	})
	if divs := Divergences(flat, 14, 3); len(divs) != 0 {
		t.Errorf("плоская серия: %+v", divs)
	}
}

func TestSupportResistance(t *testing.T) {
	candles := generateTestCandles(40, func(i int) model.Candle {
		c := model.Candle{Open: 100, Close: 100, High: 100.3, Low: 99.7, Volume: 1000}
		switch i {
		case 5, 30:
			c.High = 105
		case 20:
			c.High = 107
		case 10, 25:
			c.Low = 95
		case 15:
			c.Low = 93
		}
		return c
	})

	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

	support, resistance := SupportResistance(candles, 3)
	if len(support) != 2 || !near(support[0], 95) || !near(support[1], 93) {
		t.Errorf("support = %v, want [95 93] от ближнего к дальнему", support)
	}
	if len(resistance) != 2 || !near(resistance[0], 105) || !near(resistance[1], 107) {
		t.Errorf("resistance = %v, want [105 107]", resistance)
	}

	support, _ = SupportResistance(candles, 1)
	if len(support) != 1 || !near(support[0], 95) {
		t.Errorf("maxLevels 1: support = %v", support)
	}

	if s, r := SupportResistance(candles[:10], 3); s != nil || r != nil {
		t.Errorf("короткая серия должна давать nil: %v %v", s, r)
	}
}
