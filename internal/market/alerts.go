package market

import (
	"fmt"

	"github.com/Alias1177/KuFutures/internal/model"
)

type AlertLevel string

const (
	AlertCritical AlertLevel = "CRITICAL"
	AlertWarning  AlertLevel = "WARNING"
	AlertInfo     AlertLevel = "INFO"
)

// Alert is a single warning raised while monitoring an open position.
type Alert struct {
	Level   AlertLevel
	Message string
}

// PositionAlerts проверяет открытую позицию против свежего снапшота
// (обычно 1h) и возвращает список предупреждений, от критичных к
// информационным.
func PositionAlerts(pos model.Position, snap *model.TimeframeSnapshot) []Alert {
	var alerts []Alert

	if liq := pos.LiquidationDistancePct(); liq > 0 {
		if liq < 5 {
			alerts = append(alerts, Alert{
				Level:   AlertCritical,
				Message: fmt.Sprintf("ликвидация в %.1f%% от текущей цены, добавьте маржу или сократите позицию", liq),
			})
		} else if liq < 10 {
			alerts = append(alerts, Alert{
				Level:   AlertWarning,
				Message: fmt.Sprintf("ликвидация в %.1f%% от текущей цены", liq),
			})
		}
	}

	if pos.Side == model.Long && !snap.AboveVWAP() {
		alerts = append(alerts, Alert{
			Level:   AlertWarning,
			Message: fmt.Sprintf("цена ушла под VWAP (%.4f < %.4f) против LONG", snap.Close, snap.VWAP),
		})
	}
	if pos.Side == model.Short && snap.AboveVWAP() {
		alerts = append(alerts, Alert{
			Level:   AlertWarning,
			Message: fmt.Sprintf("цена пробила VWAP вверх (%.4f > %.4f) против SHORT", snap.Close, snap.VWAP),
		})
	}

	if snap.ADX < 20 {
		alerts = append(alerts, Alert{
			Level:   AlertInfo,
			Message: fmt.Sprintf("тренд выдыхается (ADX %.1f), рынок переходит в боковик", snap.ADX),
		})
	} else if snap.ADX > 25 {
		withTrend := (snap.Trend == model.TrendUp && pos.Side == model.Long) ||
			(snap.Trend == model.TrendDown && pos.Side == model.Short)
		if withTrend {
			alerts = append(alerts, Alert{
				Level:   AlertInfo,
				Message: fmt.Sprintf("сильный тренд %s (ADX %.1f) в сторону позиции", snap.Trend, snap.ADX),
			})
		} else {
			alerts = append(alerts, Alert{
				Level:   AlertWarning,
				Message: fmt.Sprintf("сильный тренд %s (ADX %.1f) против позиции", snap.Trend, snap.ADX),
			})
		}
	}

	if hist := snap.MACDHist; hist > -0.1 && hist < 0.1 {
		alerts = append(alerts, Alert{
			Level:   AlertInfo,
			Message: fmt.Sprintf("гистограмма MACD около нуля (%.4f), возможен кроссовер", hist),
		})
	}

	// RSI в экстремуме с противоположной гистограммой MACD, классическая
	// связка на разворот.
	switch {
	case snap.RSI > 70 && snap.MACDHist < 0:
		if pos.Side == model.Short {
			alerts = append(alerts, Alert{
				Level:   AlertInfo,
				Message: fmt.Sprintf("медвежья дивергенция RSI/MACD (RSI %.1f) в пользу SHORT", snap.RSI),
			})
		} else {
			alerts = append(alerts, Alert{
				Level:   AlertWarning,
				Message: fmt.Sprintf("медвежья дивергенция RSI/MACD (RSI %.1f), подумайте о выходе из LONG", snap.RSI),
			})
		}
	case snap.RSI < 30 && snap.MACDHist > 0:
		if pos.Side == model.Long {
			alerts = append(alerts, Alert{
				Level:   AlertInfo,
				Message: fmt.Sprintf("бычья дивергенция RSI/MACD (RSI %.1f) в пользу LONG", snap.RSI),
			})
		} else {
			alerts = append(alerts, Alert{
				Level:   AlertWarning,
				Message: fmt.Sprintf("бычья дивергенция RSI/MACD (RSI %.1f), подумайте о выходе из SHORT", snap.RSI),
			})
		}
	}

	if snap.OBVSlope < 0 && snap.Trend == model.TrendUp {
		alerts = append(alerts, Alert{
			Level:   AlertWarning,
			Message: "цена растёт без объёма, OBV снижается",
		})
	}

	switch {
	case snap.BBPosition > 0.95:
		if pos.Side == model.Long {
			alerts = append(alerts, Alert{
				Level:   AlertWarning,
				Message: "цена у верхней полосы Боллинджера, зона фиксации прибыли для LONG",
			})
		} else {
			alerts = append(alerts, Alert{
				Level:   AlertInfo,
				Message: "цена у верхней полосы Боллинджера, сильная зона для SHORT",
			})
		}
	case snap.BBPosition < 0.05:
		if pos.Side == model.Short {
			alerts = append(alerts, Alert{
				Level:   AlertWarning,
				Message: "цена у нижней полосы Боллинджера, зона фиксации прибыли для SHORT",
			})
		} else {
			alerts = append(alerts, Alert{
				Level:   AlertInfo,
				Message: "цена у нижней полосы Боллинджера, сильная зона для LONG",
			})
		}
	}

	if snap.VolumeRatio > 2.0 {
		alerts = append(alerts, Alert{
			Level:   AlertInfo,
			Message: fmt.Sprintf("всплеск объёма %.1fx от среднего", snap.VolumeRatio),
		})
	}

	return alerts
}
