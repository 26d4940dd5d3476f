package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/KuFutures/internal/config"
	"github.com/Alias1177/KuFutures/internal/exchange/kucoin"
	"github.com/Alias1177/KuFutures/internal/logging"
	"github.com/Alias1177/KuFutures/internal/market"
	"github.com/Alias1177/KuFutures/internal/model"
	"github.com/Alias1177/KuFutures/internal/notify"
	"github.com/Alias1177/KuFutures/internal/scoring"
	"github.com/Alias1177/KuFutures/internal/watchlist"
)

// scan прогоняет вочлист через рубрику и печатает таблицу лучших
// сетапов. С флагом -notify качественные сигналы уходят в телеграм.
func main() {
	top := flag.Int("top", 10, "сколько строк показать")
	parallel := flag.Int("parallel", 8, "одновременных символов")
	listPath := flag.String("watchlist", "", "YAML с вочлистом (по умолчанию WATCHLIST_FILE или встроенный)")
	doNotify := flag.Bool("notify", false, "слать сигналы со входом в телеграм")
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
	if *doNotify && cfg.HasTelegram() {
		notifier, err = notify.New(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("telegram init failed")
		}
	}

	client := kucoin.New(kucoin.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout(),
	})
	scanner := market.NewScanner(client, market.NewFetcher(client), *parallel)
	ctx := context.Background()

	// 2) Оцениваем весь вочлист
	fmt.Printf("Сканирую %d символов...\n", len(symbols))
	started := time.Now()
	ops := scanner.Scan(ctx, symbols)

	ranked := make([]model.Opportunity, 0, len(ops))
	for _, op := range ops {
		if op.Err == nil {
			ranked = append(ranked, op)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return bestScore(ranked[i]) > bestScore(ranked[j])
	})

	// 3) Таблица
	fmt.Printf("\n===== РЕЗУЛЬТАТЫ СКАНА (%s) =====\n", time.Since(started).Round(time.Second))
	fmt.Printf("%-4s %-16s %12s %9s %6s %6s %-8s\n", "#", "СИМВОЛ", "ЦЕНА", "24Ч", "LONG", "SHORT", "СИГНАЛ")
	for i, op := range ranked {
		if i >= *top {
			break
		}
		fmt.Printf("%-4d %-16s %12.6g %+8.2f%% %6d %6d %-8s\n",
			i+1, op.Symbol, op.Price, op.Change, op.Score.Long, op.Score.Short, scoring.Decide(op.Score))
	}

	// 4) Сигналы со входом
	entries := 0
	for _, op := range ranked {
		signal := scoring.Decide(op.Score)
		if signal == model.SignalNeutral {
			continue
		}
		entries++
		fmt.Printf("\n%s %s: %s\n", signal, op.Symbol, scoring.Grade(bestScore(op)))
		if notifier != nil {
			notifier.Opportunity(op, signal)
			time.Sleep(50 * time.Millisecond)
		}
	}
	if entries == 0 {
		fmt.Println("\nСетапов со входом нет, ждём рынок.")
	}
}

func bestScore(op model.Opportunity) int {
	if op.Score.Short > op.Score.Long {
		return op.Score.Short
	}
	return op.Score.Long
}
