package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/KuFutures/internal/journal"
	"github.com/Alias1177/KuFutures/internal/market"
	"github.com/Alias1177/KuFutures/internal/model"
	"github.com/Alias1177/KuFutures/internal/scoring"
)

// Notifier sends alerts to one Telegram chat. A nil *Notifier is a
// valid no-op, so callers don't branch on whether Telegram is
// configured. Send failures are logged and swallowed: уведомления не
// должны ронять мониторинг.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

func New(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "init telegram bot")
	}
	return &Notifier{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "notify").Logger(),
	}, nil
}

func (n *Notifier) send(text string) {
	if n == nil {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "Markdown"

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Warn().Err(err).Msg("telegram send failed")
	}
}

// Opportunity announces a scanner find that cleared the entry bar.
func (n *Notifier) Opportunity(op model.Opportunity, signal model.Signal) {
	n.send(opportunityText(op, signal))
}

func opportunityText(op model.Opportunity, signal model.Signal) string {
	score := op.Score.Long
	details := op.Score.LongDetails
	if signal == model.SignalShort {
		score = op.Score.Short
		details = op.Score.ShortDetails
	}

	return fmt.Sprintf("%s *%s* %s\n", scoring.Grade(score), op.Symbol, signal) +
		fmt.Sprintf("Счёт: %d/100 (LONG %d / SHORT %d)\n", score, op.Score.Long, op.Score.Short) +
		fmt.Sprintf("Цена: %.6g, за 24ч: %+.2f%%\n\n", op.Price, op.Change) +
		"• " + strings.Join(details, "\n• ")
}

// TrailingActivated reports the switch from the waiting stop to the
// live trail.
func (n *Notifier) TrailingActivated(symbol string, price, stop float64) {
	n.send(fmt.Sprintf("🟢 *%s* трейлинг активирован\nЦена: %.6g, стоп: %.6g", symbol, price, stop))
}

// StopHit reports a triggered trailing stop.
func (n *Notifier) StopHit(symbol string, price, stop float64) {
	n.send(fmt.Sprintf("🛑 *%s* стоп сработал\nЦена: %.6g, стоп: %.6g", symbol, price, stop))
}

// CloseResult reports what happened to the market close after a stop.
func (n *Notifier) CloseResult(symbol, orderID string, err error) {
	if err != nil {
		n.send(fmt.Sprintf("❗️ *%s* не удалось закрыть позицию: %v\n*Закройте вручную!*", symbol, err))
		return
	}
	n.send(fmt.Sprintf("✅ *%s* позиция закрыта маркетом, ордер %s", symbol, orderID))
}

// ClosedExternally reports that the position disappeared from the
// exchange outside of this tool.
func (n *Notifier) ClosedExternally(symbol string) {
	n.send(fmt.Sprintf("ℹ️ *%s* позиция закрыта вне монитора, наблюдение остановлено", symbol))
}

// PositionAlerts forwards monitor warnings for one position.
func (n *Notifier) PositionAlerts(symbol string, alerts []market.Alert) {
	if text := alertsText(symbol, alerts); text != "" {
		n.send(text)
	}
}

func alertsText(symbol string, alerts []market.Alert) string {
	if len(alerts) == 0 {
		return ""
	}

	icons := map[market.AlertLevel]string{
		market.AlertCritical: "🚨",
		market.AlertWarning:  "⚠️",
		market.AlertInfo:     "ℹ️",
	}

	lines := make([]string, 0, len(alerts)+1)
	lines = append(lines, fmt.Sprintf("*%s*", symbol))
	for _, a := range alerts {
		lines = append(lines, icons[a.Level]+" "+a.Message)
	}
	return strings.Join(lines, "\n")
}

// DailySummary reports journal aggregates for the period.
func (n *Notifier) DailySummary(days int, stats *journal.Stats) {
	if text := summaryText(days, stats); text != "" {
		n.send(text)
	}
}

func summaryText(days int, stats *journal.Stats) string {
	if stats == nil || stats.Trades == 0 {
		return ""
	}
	return fmt.Sprintf(
		"📊 *Итоги за %dд*\nСделок: %d, винрейт %.1f%%\nPnL: %+.2f USDT (в среднем %+.2f, лучшая %+.2f, худшая %+.2f)",
		days, stats.Trades, stats.WinRatePct, stats.TotalPnlUSDT, stats.AvgPnlUSDT, stats.BestPnlUSDT, stats.WorstPnlUSDT,
	)
}
