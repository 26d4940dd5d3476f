package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/KuFutures/internal/config"
	"github.com/Alias1177/KuFutures/internal/journal"
	"github.com/Alias1177/KuFutures/internal/logging"
	"github.com/Alias1177/KuFutures/internal/model"
)

const usage = `использование: journal <команда> [флаги]

команды:
  log     записать закрытую сделку
  list    показать последние сделки
  stats   сводка за период
  export  выгрузить журнал в CSV
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	j := journal.New(cfg.JournalFile)
	if cfg.JournalDB != "" {
		if store, err := journal.NewStore(cfg.JournalDB); err != nil {
			log.Warn().Err(err).Msg("journal db unavailable, file only")
		} else {
			j = j.WithStore(store)
		}
	}

	switch os.Args[1] {
	case "log":
		cmdLog(j, os.Args[2:])
	case "list":
		cmdList(j, os.Args[2:])
	case "stats":
		cmdStats(j, os.Args[2:])
	case "export":
		cmdExport(j, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "неизвестная команда %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
}

func cmdLog(j *journal.Journal, args []string) {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	symbol := fs.String("symbol", "", "символ сделки")
	sideFlag := fs.String("side", "", "long или short")
	entry := fs.Float64("entry", 0, "цена входа")
	exit := fs.Float64("exit", 0, "цена выхода")
	stop := fs.Float64("stop", 0, "где стоял стоп")
	tp := fs.Int("tp", 0, "какой тейк сработал (1..3, 0 = не по тейку)")
	pnl := fs.Float64("pnl", 0, "результат в USDT")
	score := fs.Int("score", 0, "счёт рубрики на входе")
	conditions := fs.String("conditions", "", "рыночный контекст на входе")
	notes := fs.String("notes", "", "заметки")
	held := fs.Duration("held", 0, "сколько держали (например 5h30m)")
	fs.Parse(args)

	side, err := parseSide(*sideFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("bad side")
	}
	if *symbol == "" || *entry <= 0 || *exit <= 0 {
		fmt.Fprintln(os.Stderr, "нужны -symbol, -entry и -exit")
		os.Exit(2)
	}

	pnlPct := (*exit - *entry) / *entry * 100
	if side == model.Short {
		pnlPct = -pnlPct
	}

	now := time.Now()
	e, err := j.Log(journal.Entry{
		Symbol:        *symbol,
		Side:          side,
		OpenedAt:      now.Add(-*held),
		ClosedAt:      now,
		EntryPrice:    *entry,
		ExitPrice:     *exit,
		StopPrice:     *stop,
		TakeProfitHit: *tp,
		PnlUSDT:       *pnl,
		PnlPct:        pnlPct,
		EntryScore:    *score,
		Conditions:    *conditions,
		Notes:         *notes,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("journal write failed")
	}
	fmt.Printf("Записано: %s %s %s, PnL %+.2f%% (%+.2f USDT)\n", e.ID, e.Side, e.Symbol, e.PnlPct, e.PnlUSDT)
}

func cmdList(j *journal.Journal, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	n := fs.Int("n", 10, "сколько последних сделок показать")
	fs.Parse(args)

	entries, err := j.List()
	if err != nil {
		log.Fatal().Err(err).Msg("journal read failed")
	}
	if len(entries) == 0 {
		fmt.Println("Журнал пуст.")
		return
	}
	if len(entries) > *n {
		entries = entries[len(entries)-*n:]
	}

	fmt.Printf("%-16s %-10s %-16s %-5s %10s %10s %8s %5s\n",
		"ID", "ДАТА", "СИМВОЛ", "СТОР.", "ВХОД", "ВЫХОД", "PNL%", "СЧЁТ")
	for _, e := range entries {
		fmt.Printf("%-16s %-10s %-16s %-5s %10.6g %10.6g %+7.2f%% %5d\n",
			e.ID, e.ClosedAt.Format("02.01 15:04"), e.Symbol, e.Side,
			e.EntryPrice, e.ExitPrice, e.PnlPct, e.EntryScore)
		if e.Notes != "" {
			fmt.Printf("    %s\n", e.Notes)
		}
	}
}

func cmdStats(j *journal.Journal, args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	days := fs.Int("days", 30, "за сколько дней считать (0 = за всё время)")
	fs.Parse(args)

	stats, err := j.Stats(*days)
	if err != nil {
		log.Fatal().Err(err).Msg("journal stats failed")
	}

	period := "ВСЁ ВРЕМЯ"
	if *days > 0 {
		period = fmt.Sprintf("%d ДН.", *days)
	}
	fmt.Printf("\n===== СТАТИСТИКА: %s =====\n", period)
	if stats.Trades == 0 {
		fmt.Println("Сделок за период нет.")
		return
	}
	fmt.Printf("Сделок: %d (%d в плюс, %d в минус)\n", stats.Trades, stats.Wins, stats.Losses)
	fmt.Printf("Винрейт: %.1f%%\n", stats.WinRatePct)
	fmt.Printf("Суммарный PnL: %+.2f USDT\n", stats.TotalPnlUSDT)
	fmt.Printf("Средняя прибыль: %.2f, средний убыток: %.2f\n", stats.AvgWinUSDT, stats.AvgLossUSDT)
	if stats.Losses == 0 {
		fmt.Println("Профит-фактор: н/д, убыточных сделок нет")
	} else {
		fmt.Printf("Профит-фактор: %.2f\n", stats.ProfitFactor)
	}
	fmt.Printf("Лучшая: %+.2f, худшая: %+.2f USDT\n", stats.BestPnlUSDT, stats.WorstPnlUSDT)
	fmt.Printf("Средний PnL на сделку: %+.2f USDT\n", stats.AvgPnlUSDT)
	fmt.Printf("Среднее удержание: %.0f мин\n", stats.AvgHoldMinutes)
	if stats.AvgEntryScore > 0 {
		fmt.Printf("Средний счёт на входе: %.0f/100\n", stats.AvgEntryScore)
	}

	symbols := make([]string, 0, len(stats.BySymbol))
	for s := range stats.BySymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	fmt.Println("\nПо символам:")
	for _, s := range symbols {
		tally := stats.BySymbol[s]
		fmt.Printf("  %-14s %d сделок, %d в плюс, PnL %+.2f USDT\n", s, tally.Trades, tally.Wins, tally.PnlUSDT)
	}
}

func cmdExport(j *journal.Journal, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "файл CSV (пусто = stdout)")
	fs.Parse(args)

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot create export file")
		}
		defer f.Close()
		w = f
	}
	if err := j.ExportCSV(w); err != nil {
		log.Fatal().Err(err).Msg("export failed")
	}
	if *out != "" {
		fmt.Printf("Журнал выгружен в %s\n", *out)
	}
}

func parseSide(s string) (model.Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY":
		return model.Long, nil
	case "SHORT", "SELL":
		return model.Short, nil
	}
	return "", errors.Errorf("сторона должна быть long или short, получили %q", s)
}
