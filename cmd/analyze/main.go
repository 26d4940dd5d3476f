package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/KuFutures/internal/config"
	"github.com/Alias1177/KuFutures/internal/exchange/kucoin"
	"github.com/Alias1177/KuFutures/internal/indicator"
	"github.com/Alias1177/KuFutures/internal/logging"
	"github.com/Alias1177/KuFutures/internal/market"
	"github.com/Alias1177/KuFutures/internal/model"
	"github.com/Alias1177/KuFutures/internal/risk"
	"github.com/Alias1177/KuFutures/internal/scoring"
)

// analyze печатает полный разбор символа: индикаторы по всем
// таймфреймам, счёт сетапа в обе стороны и план риска. Без символа
// проходит по всем открытым позициям. Публичные данные работают без
// ключей, ключи нужны для баланса и позиций.
func main() {
	symbol := flag.String("symbol", "", "символ: BTC, BTCUSDT или BTC/USDT:USDT (пусто = разбор открытых позиций)")
	balance := flag.Float64("balance", 0, "баланс для расчёта размера, USDT (0 = взять с биржи)")
	riskPct := flag.Float64("risk", 0, "риск на сделку, %% (0 = DEFAULT_RISK_PERCENT)")
	leverage := flag.Float64("leverage", 0, "плечо (0 = DEFAULT_LEVERAGE)")
	flag.Parse()

	if *symbol == "" && flag.NArg() > 0 {
		*symbol = flag.Arg(0)
	}

	// 1) Конфиг и логгер
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config invalid")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	if *riskPct <= 0 {
		*riskPct = cfg.DefaultRiskPercent
	}
	if *leverage <= 0 {
		*leverage = float64(cfg.DefaultLeverage)
	}

	client := kucoin.New(kucoin.Options{
		BaseURL:    cfg.APIURL,
		Key:        cfg.APIKey,
		Secret:     cfg.APISecret,
		Passphrase: cfg.APIPassphrase,
		Timeout:    cfg.Timeout(),
	})
	fetcher := market.NewFetcher(client)
	ctx := context.Background()
	hasKeys := cfg.ValidateCredentials() == nil

	if *symbol != "" {
		analyzeSymbol(ctx, client, fetcher, *symbol, *balance, *riskPct, *leverage, hasKeys)
		return
	}

	if !hasKeys {
		fmt.Fprintln(os.Stderr, "использование: analyze -symbol BTC [-balance 1000] [-risk 1] [-leverage 10]")
		fmt.Fprintln(os.Stderr, "без -symbol команда разбирает открытые позиции, для этого нужны API-ключи")
		os.Exit(2)
	}
	analyzePositions(ctx, client, fetcher)
}

func analyzeSymbol(ctx context.Context, client *kucoin.Client, fetcher *market.Fetcher, symbol string, balance, riskPct, leverage float64, hasKeys bool) {
	// 2) Обзор рынка
	ticker, err := client.GetTicker(ctx, symbol)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch ticker failed")
	}

	fmt.Printf("\n===== ОБЗОР РЫНКА: %s =====\n", ticker.Symbol)
	fmt.Printf("Контракт: %s\n", kucoin.ToContract(symbol))
	fmt.Printf("Цена: %.6g\n", ticker.Last)
	fmt.Printf("За 24ч: %+.2f%% (мин %.6g / макс %.6g)\n", ticker.ChangePct, ticker.Low24h, ticker.High24h)
	fmt.Printf("Оборот за 24ч: %.0f USDT\n", ticker.QuoteVolume)

	// 3) Индикаторы по всем таймфреймам
	snaps, err := fetcher.MultiSnapshot(ctx, symbol)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch candles failed")
	}

	fmt.Printf("\n===== ИНДИКАТОРЫ =====\n")
	for _, tf := range market.AllTimeframes {
		printSnapshot(snaps[tf])
	}

	// 4) Уровни и дивергенции по часовику
	if h1, err := client.GetCandles(ctx, symbol, model.TF1h, 200); err != nil {
		log.Warn().Err(err).Msg("levels fetch failed")
	} else {
		printLevels(h1)
	}

	// 5) Счёт сетапа (дневка в рубрике не участвует, только контекст)
	score := scoring.Score(snaps)
	signal := scoring.Decide(score)
	printScore(score, signal)

	// 6) План риска для более сильной стороны
	side := model.Long
	if signal == model.SignalShort || (signal == model.SignalNeutral && score.Short > score.Long) {
		side = model.Short
	}

	if balance <= 0 && hasKeys {
		if avail, err := client.GetAvailableBalance(ctx); err != nil {
			log.Warn().Err(err).Msg("balance fetch failed")
		} else {
			balance = avail
		}
	}
	printRiskPlan(side, ticker.Last, snaps[model.TF1h].ATR, balance, riskPct, leverage)

	// 7) Открытая позиция, если она есть
	if hasKeys {
		pos, err := client.GetPosition(ctx, symbol)
		switch {
		case err == nil:
			printPosition(*pos, snaps[model.TF1h], score)
		case errors.Is(err, kucoin.ErrNoPosition):
			// позиции нет, блок пропускаем
		default:
			log.Warn().Err(err).Msg("position fetch failed")
		}
	}
	fmt.Println()
}

// analyzePositions даёт сжатый разбор каждой открытой позиции.
func analyzePositions(ctx context.Context, client *kucoin.Client, fetcher *market.Fetcher) {
	positions, err := client.GetPositions(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch positions failed")
	}
	if len(positions) == 0 {
		fmt.Println("Открытых позиций нет.")
		return
	}

	fmt.Printf("\n===== ОТКРЫТЫЕ ПОЗИЦИИ: %d =====\n", len(positions))
	for _, pos := range positions {
		snaps, err := fetcher.MultiSnapshot(ctx, pos.Symbol, market.ScoringTimeframes...)
		if err != nil {
			log.Warn().Err(err).Str("symbol", pos.Symbol).Msg("fetch candles failed")
			continue
		}
		printPosition(pos, snaps[model.TF1h], scoring.Score(snaps))
	}
	fmt.Println()
}

func printSnapshot(s *model.TimeframeSnapshot) {
	fmt.Printf("\n[%s] закрытие %.6g, тренд %s\n", s.Timeframe, s.Close, s.Trend)
	fmt.Printf("  EMA 20/50/100/200: %.6g / %.6g / %.6g / %.6g\n", s.EMA20, s.EMA50, s.EMA100, s.EMA200)
	fmt.Printf("  RSI: %.1f, Stoch K/D: %.1f/%.1f\n", s.RSI, s.StochK, s.StochD)
	fmt.Printf("  MACD: %.4g (сигнальная %.4g, гистограмма %+.4g)\n", s.MACD, s.MACDSignal, s.MACDHist)
	fmt.Printf("  ADX: %.1f (+DI %.1f, -DI %.1f), ATR: %.6g (%.2f%%)\n", s.ADX, s.PlusDI, s.MinusDI, s.ATR, s.ATRPct())
	fmt.Printf("  Боллинджер: %.6g / %.6g / %.6g (позиция %.2f)\n", s.BBLower, s.BBMiddle, s.BBUpper, s.BBPosition)
	fmt.Printf("  VWAP: %.6g, объём к среднему: %.2fx, наклон OBV: %+.4g\n", s.VWAP, s.VolumeRatio, s.OBVSlope)
}

func printLevels(candles []model.Candle) {
	support, resistance := indicator.SupportResistance(candles, 3)
	divs := indicator.Divergences(candles, 14, 3)
	if len(support) == 0 && len(resistance) == 0 && len(divs) == 0 {
		return
	}

	fmt.Printf("\n===== УРОВНИ И ДИВЕРГЕНЦИИ (1h) =====\n")
	for _, r := range resistance {
		fmt.Printf("Сопротивление: %.6g\n", r)
	}
	for _, s := range support {
		fmt.Printf("Поддержка: %.6g\n", s)
	}
	for i, d := range divs {
		if i == 3 {
			break
		}
		fmt.Printf("Дивергенция RSI: %s %s (цена %.6g -> %.6g, RSI %.1f -> %.1f)\n",
			d.Kind, d.Direction, d.PriceFrom, d.PriceTo, d.RSIFrom, d.RSITo)
	}
}

func printScore(score model.ScoreResult, signal model.Signal) {
	fmt.Printf("\n===== ОЦЕНКА СЕТАПА =====\n")
	fmt.Printf("LONG %d/100: %s\n", score.Long, scoring.Grade(score.Long))
	for _, line := range score.LongDetails {
		fmt.Printf("  + %s\n", line)
	}
	fmt.Printf("SHORT %d/100: %s\n", score.Short, scoring.Grade(score.Short))
	for _, line := range score.ShortDetails {
		fmt.Printf("  + %s\n", line)
	}
	fmt.Printf("Баланс сторон: %+d, сигнал: %s\n", score.Signed, signal)
}

func printRiskPlan(side model.Side, price, atr, balance, riskPct, leverage float64) {
	stop := risk.ATRStop(price, atr, side)

	fmt.Printf("\n===== ПЛАН РИСКА (%s) =====\n", side)
	fmt.Printf("Вход по рынку: %.6g\n", price)
	fmt.Printf("Стоп по 1.5 ATR: %.6g\n", stop)
	for _, tp := range risk.TakeProfits(price, stop, side) {
		fmt.Printf("Тейк %.1fR: %.6g (%.0f%% позиции)\n", tp.R, tp.Price, tp.AllocationPct)
	}

	if balance <= 0 {
		fmt.Println("Размер позиции: укажите -balance или API-ключи")
		return
	}
	size, err := risk.PositionSize(balance, riskPct, price, stop, leverage)
	if err != nil {
		fmt.Printf("Размер позиции: %v\n", err)
		return
	}
	fmt.Printf("Размер: %.4f контрактов (номинал %.2f, маржа %.2f USDT)\n", size.Quantity, size.NotionalUSDT, size.MarginUSDT)
	fmt.Printf("Риск: %.2f USDT при балансе %.2f\n", size.RiskUSDT, balance)
	if size.Capped {
		fmt.Println("Внимание: размер урезан по марже, риск меньше заданного")
	}
	fmt.Printf("Комиссии тейкером на круг: %.4f USDT\n", risk.Fees(size.NotionalUSDT).RoundTrip)
}

func printPosition(pos model.Position, snap *model.TimeframeSnapshot, score model.ScoreResult) {
	fmt.Printf("\n===== ОТКРЫТАЯ ПОЗИЦИЯ =====\n")
	fmt.Printf("%s %s, %.0f контрактов, плечо x%.0f\n", pos.Side, pos.Symbol, pos.Size, pos.Leverage)
	fmt.Printf("Вход %.6g, сейчас %.6g, PnL %.2f USDT (ROE %+.2f%%)\n",
		pos.EntryPrice, pos.MarkPrice, pos.UnrealizedPnl, pos.ROEPct)
	if pos.LiquidationPrice > 0 {
		fmt.Printf("Ликвидация: %.6g (в %.1f%% от цены)\n", pos.LiquidationPrice, pos.LiquidationDistancePct())
	}
	fmt.Printf("Оценка: %s\n", scoring.InterpretForPosition(score, pos.Side))

	for _, a := range market.PositionAlerts(pos, snap) {
		fmt.Printf("[%s] %s\n", a.Level, a.Message)
	}
	for _, s := range risk.Suggestions(pos) {
		fmt.Printf("Совет: %s\n", s)
	}
}
