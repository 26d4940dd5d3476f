package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/KuFutures/internal/config"
	"github.com/Alias1177/KuFutures/internal/exchange/kucoin"
	"github.com/Alias1177/KuFutures/internal/journal"
	"github.com/Alias1177/KuFutures/internal/logging"
	"github.com/Alias1177/KuFutures/internal/market"
	"github.com/Alias1177/KuFutures/internal/model"
	"github.com/Alias1177/KuFutures/internal/notify"
	"github.com/Alias1177/KuFutures/internal/risk"
	"github.com/Alias1177/KuFutures/internal/scoring"
	"github.com/Alias1177/KuFutures/internal/trailing"
)

// trail ведёт трейлинг-стоп по открытой позиции до стопа, внешнего
// закрытия или Ctrl+C. Позиция должна быть открыта заранее.
func main() {
	symbol := flag.String("symbol", "", "символ открытой позиции")
	variantFlag := flag.String("variant", "classic", "вариант: classic, auto, smart или dynamic")
	atrMult := flag.Float64("atr-mult", 0, "classic: множитель ATR (0 = 2.0)")
	trailPct := flag.Float64("trail-pct", 0, "classic: процентный трейл вместо ATR")
	stopPrice := flag.Float64("stop", 0, "auto: начальный стоп (0 = 1.5 ATR от входа)")
	activationPct := flag.Float64("activation-pct", 0, "dynamic: прибыль для активации, %% (0 = 1%%)")
	minTrailPct := flag.Float64("min-trail-pct", 0, "dynamic: минимальный шаг улучшения стопа, %% (0 = 0.3%%)")
	interval := flag.Duration("interval", 15*time.Second, "период опроса биржи")
	useWS := flag.Bool("ws", false, "тики по вебсокету между опросами")
	useJournal := flag.Bool("journal", true, "записать сделку в журнал после стопа")
	flag.Parse()

	if *symbol == "" && flag.NArg() > 0 {
		*symbol = flag.Arg(0)
	}
	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "использование: trail -symbol BTC [-variant dynamic] [-ws]")
		os.Exit(2)
	}

	// 1) Конфиг, логгер, ключи обязательны
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config invalid")
	}
	if err := cfg.ValidateCredentials(); err != nil {
		log.Fatal().Err(err).Msg("trailing needs API credentials")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	variant, err := trailing.ParseVariant(*variantFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("bad variant")
	}

	client := kucoin.New(kucoin.Options{
		BaseURL:    cfg.APIURL,
		Key:        cfg.APIKey,
		Secret:     cfg.APISecret,
		Passphrase: cfg.APIPassphrase,
		Timeout:    cfg.Timeout(),
	})
	fetcher := market.NewFetcher(client)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 2) Позиция и контекст рынка
	pos, err := client.GetPosition(ctx, *symbol)
	if err != nil {
		log.Fatal().Err(err).Msg("no open position to trail")
	}

	fmt.Printf("\n===== ТРЕЙЛИНГ: %s =====\n", pos.Symbol)
	fmt.Printf("%s %.0f контрактов, вход %.6g, сейчас %.6g (ROE %+.2f%%)\n",
		pos.Side, pos.Size, pos.EntryPrice, pos.MarkPrice, pos.ROEPct)

	entryScore := 0
	conditions := ""
	if snaps, err := fetcher.MultiSnapshot(ctx, *symbol, market.ScoringTimeframes...); err != nil {
		log.Warn().Err(err).Msg("score fetch failed")
	} else {
		score := scoring.Score(snaps)
		entryScore = score.Long
		if pos.Side == model.Short {
			entryScore = score.Short
		}
		conditions = scoring.InterpretForPosition(score, pos.Side)
		fmt.Printf("Оценка позиции: %s (%d/100)\n", conditions, entryScore)
	}

	// 3) Стоп для auto, если не задан руками
	if variant == trailing.VariantAuto && *stopPrice <= 0 {
		snap, err := fetcher.Snapshot(ctx, *symbol, model.TF1h)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot derive initial stop")
		}
		*stopPrice = risk.ATRStop(pos.EntryPrice, snap.ATR, pos.Side)
		fmt.Printf("Начальный стоп по 1.5 ATR: %.6g\n", *stopPrice)
	}

	machine, policy, err := trailing.Setup(variant, pos.Side, pos.EntryPrice, trailing.SetupOptions{
		ATRMult:       *atrMult,
		TrailPct:      *trailPct,
		InitialStop:   *stopPrice,
		ActivationPct: *activationPct,
		MinTrailPct:   *minTrailPct,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("trailing setup failed")
	}
	fmt.Printf("Вариант %s, состояние %s, стоп %.6g, активация %.6g\n",
		variant, machine.State(), machine.Stop(), machine.Activation())

	// 4) Телеграм и вебсокет по желанию
	var notifier *notify.Notifier
	if cfg.HasTelegram() {
		if notifier, err = notify.New(cfg.TelegramToken, cfg.TelegramChatID); err != nil {
			log.Warn().Err(err).Msg("telegram init failed, continuing without it")
			notifier = nil
		}
	}

	var prices <-chan float64
	if *useWS {
		stream := client.NewTickerStream(*symbol)
		go stream.Run(ctx)
		prices = stream.Prices()
	}

	// 5) Поехали
	started := time.Now()
	runner := trailing.NewRunner(trailing.RunnerOptions{
		Exchange:  client,
		Snapshots: fetcher,
		Policy:    policy,
		Machine:   machine,
		Symbol:    *symbol,
		Interval:  *interval,
		Prices:    prices,
		Notify:    notifier,
	})

	state, err := runner.Run(ctx)
	if err != nil {
		fmt.Printf("\nМониторинг остановлен (%v), состояние %s, стоп %.6g\n", err, state, machine.Stop())
		return
	}

	fmt.Printf("\n===== СЕССИЯ ЗАВЕРШЕНА =====\n")
	fmt.Printf("Состояние: %s, длительность %s\n", state, time.Since(started).Round(time.Second))

	// 6) Запись в журнал после сработавшего стопа
	if state == trailing.StateStoppedOut && *useJournal {
		logTrade(cfg, *pos, machine, entryScore, conditions, started, string(variant))
	}
}

// logTrade пишет закрытую сделку в журнал. Цена выхода берётся по
// уровню стопа: фактический филл маркет-ордера мы уже не увидим.
func logTrade(cfg *config.Config, pos model.Position, machine *trailing.Machine, entryScore int, conditions string, started time.Time, variant string) {
	j := journal.New(cfg.JournalFile)
	if cfg.JournalDB != "" {
		if store, err := journal.NewStore(cfg.JournalDB); err != nil {
			log.Warn().Err(err).Msg("journal db unavailable")
		} else {
			j = j.WithStore(store)
		}
	}

	exit := machine.Stop()
	diff := exit - pos.EntryPrice
	if pos.Side == model.Short {
		diff = -diff
	}
	pnlPct := 0.0
	if pos.EntryPrice > 0 {
		pnlPct = diff / pos.EntryPrice * 100
	}

	e, err := j.Log(journal.Entry{
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		OpenedAt:   started, // время старта монитора, открытие биржа не отдаёт
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exit,
		StopPrice:  exit,
		PnlUSDT:    diff * pos.Size,
		PnlPct:     pnlPct,
		EntryScore: entryScore,
		Conditions: conditions,
		Notes:      "трейлинг " + variant,
	})
	if err != nil {
		log.Error().Err(err).Msg("journal write failed")
		return
	}
	fmt.Printf("Сделка записана в журнал: %s (PnL %+.2f%%)\n", e.ID, e.PnlPct)
}
