package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/KuFutures/internal/config"
	"github.com/Alias1177/KuFutures/internal/exchange/kucoin"
	"github.com/Alias1177/KuFutures/internal/journal"
	"github.com/Alias1177/KuFutures/internal/logging"
	"github.com/Alias1177/KuFutures/internal/market"
	"github.com/Alias1177/KuFutures/internal/metrics"
	"github.com/Alias1177/KuFutures/internal/model"
	"github.com/Alias1177/KuFutures/internal/notify"
	"github.com/Alias1177/KuFutures/internal/risk"
	"github.com/Alias1177/KuFutures/internal/scoring"
	"github.com/Alias1177/KuFutures/internal/watchlist"
)

// watch крутит сканер и мониторинг позиций по расписанию. Сигналы и
// предупреждения уходят в телеграм, метрики отдаются Prometheus.
func main() {
	interval := flag.Duration("interval", 5*time.Minute, "период обхода")
	top := flag.Int("top", 5, "сколько лучших сетапов показывать")
	parallel := flag.Int("parallel", 8, "одновременных символов в скане")
	listPath := flag.String("watchlist", "", "YAML с вочлистом")
	metricsAddr := flag.String("metrics", "", "адрес для /metrics, например :9091 (пусто = выключено)")
	flag.Parse()

	// 1) Конфиг и логгер
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config invalid")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	path := *listPath
	if path == "" {
		path = cfg.WatchlistFile
	}
	symbols, err := watchlist.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("watchlist load failed")
	}

	var notifier *notify.Notifier
	if cfg.HasTelegram() {
		if notifier, err = notify.New(cfg.TelegramToken, cfg.TelegramChatID); err != nil {
			log.Warn().Err(err).Msg("telegram init failed, continuing without it")
			notifier = nil
		}
	}

	client := kucoin.New(kucoin.Options{
		BaseURL:    cfg.APIURL,
		Key:        cfg.APIKey,
		Secret:     cfg.APISecret,
		Passphrase: cfg.APIPassphrase,
		Timeout:    cfg.Timeout(),
	})
	fetcher := market.NewFetcher(client)

	// 2) Прометей по желанию
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info().Str("addr", *metricsAddr).Msg("metrics server listening")
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	w := &watcher{
		client:         client,
		scanner:        market.NewScanner(client, fetcher, *parallel),
		fetcher:        fetcher,
		notifier:       notifier,
		journal:        journal.New(cfg.JournalFile),
		symbols:        symbols,
		top:            *top,
		hasKeys:        cfg.ValidateCredentials() == nil,
		lastSignal:     make(map[string]model.Signal),
		lastSummaryDay: time.Now().Day(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().
		Int("symbols", len(symbols)).
		Dur("interval", *interval).
		Bool("positions", w.hasKeys).
		Msg("watch started")

	// 3) Первый обход сразу, дальше по тикеру
	w.round(ctx)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nОстановлено.")
			return
		case <-ticker.C:
			w.round(ctx)
		}
	}
}

type watcher struct {
	client         *kucoin.Client
	scanner        *market.Scanner
	fetcher        *market.Fetcher
	notifier       *notify.Notifier
	journal        *journal.Journal
	symbols        []string
	top            int
	hasKeys        bool
	lastSignal     map[string]model.Signal
	lastSummaryDay int
}

func (w *watcher) round(ctx context.Context) {
	fmt.Printf("\n===== ОБХОД %s =====\n", time.Now().Format("15:04:05"))

	ops := w.scanner.Scan(ctx, w.symbols)
	metrics.ScansTotal.Inc()

	ranked := make([]model.Opportunity, 0, len(ops))
	for _, op := range ops {
		if op.Err != nil {
			metrics.ScanErrors.WithLabelValues(op.Symbol).Inc()
			continue
		}
		metrics.SymbolScore.WithLabelValues(op.Symbol, "long").Set(float64(op.Score.Long))
		metrics.SymbolScore.WithLabelValues(op.Symbol, "short").Set(float64(op.Score.Short))
		ranked = append(ranked, op)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return bestScore(ranked[i]) > bestScore(ranked[j])
	})

	for i, op := range ranked {
		if i >= w.top {
			break
		}
		fmt.Printf("%-16s %12.6g %+8.2f%% LONG %3d SHORT %3d %s\n",
			op.Symbol, op.Price, op.Change, op.Score.Long, op.Score.Short, scoring.Decide(op.Score))
	}

	// Уведомляем только при смене сигнала, иначе каждый обход будет
	// повторять одно и то же.
	for _, op := range ranked {
		signal := scoring.Decide(op.Score)
		if w.lastSignal[op.Symbol] == signal {
			continue
		}
		w.lastSignal[op.Symbol] = signal
		if signal == model.SignalNeutral {
			continue
		}
		fmt.Printf("Новый сигнал %s по %s: %s\n", signal, op.Symbol, scoring.Grade(bestScore(op)))
		w.notifier.Opportunity(op, signal)
	}

	if w.hasKeys {
		w.checkPositions(ctx)
	}
	w.maybeDailySummary()
}

func (w *watcher) checkPositions(ctx context.Context) {
	positions, err := w.client.GetPositions(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("positions fetch failed")
		return
	}
	metrics.PositionsOpen.Set(float64(len(positions)))
	if len(positions) == 0 {
		return
	}

	fmt.Println("\nОткрытые позиции:")
	for _, pos := range positions {
		fmt.Printf("%s %s %.0f конт., вход %.6g, ROE %+.2f%%\n",
			pos.Side, pos.Symbol, pos.Size, pos.EntryPrice, pos.ROEPct)

		snap, err := w.fetcher.Snapshot(ctx, pos.Symbol, model.TF1h)
		if err != nil {
			log.Warn().Err(err).Str("symbol", pos.Symbol).Msg("snapshot failed")
			continue
		}

		alerts := market.PositionAlerts(pos, snap)
		urgent := make([]market.Alert, 0, len(alerts))
		for _, a := range alerts {
			fmt.Printf("  [%s] %s\n", a.Level, a.Message)
			metrics.AlertsFired.WithLabelValues(string(a.Level)).Inc()
			if a.Level != market.AlertInfo {
				urgent = append(urgent, a)
			}
		}
		w.notifier.PositionAlerts(pos.Symbol, urgent)

		for _, s := range risk.Suggestions(pos) {
			fmt.Printf("  Совет: %s\n", s)
		}
	}
}

// maybeDailySummary шлёт сводку по журналу раз в сутки, при первой
// смене календарного дня.
func (w *watcher) maybeDailySummary() {
	day := time.Now().Day()
	if day == w.lastSummaryDay {
		return
	}
	w.lastSummaryDay = day

	stats, err := w.journal.Stats(1)
	if err != nil {
		log.Warn().Err(err).Msg("journal stats failed")
		return
	}
	w.notifier.DailySummary(1, stats)
}

func bestScore(op model.Opportunity) int {
	if op.Score.Short > op.Score.Long {
		return op.Score.Short
	}
	return op.Score.Long
}
