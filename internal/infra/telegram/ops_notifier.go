package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/config"
	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
	"github.com/Vahe555123/busines/internal/infra/mail"
)

var _ adapter.OpsNotifier = (*OpsNotifier)(nil)

// OpsNotifier posts purchase alerts to the operations chat.
type OpsNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

func NewOpsNotifier(cfg *config.TelegramConfig, log zerolog.Logger) (*OpsNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	return &OpsNotifier{
		bot:    bot,
		chatID: cfg.ChatID,
		log:    log.With().Str("component", "telegram").Logger(),
	}, nil
}

func (n *OpsNotifier) NotifyPurchase(ctx context.Context, note adapter.PurchaseNote) error {
	text := formatPurchaseMessage(note)

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		n.log.Error().Err(err).Str("purchase_id", note.PurchaseID).Msg("sendMessage failed")
		return err
	}
	return nil
}

func formatPurchaseMessage(note adapter.PurchaseNote) string {
	lines := []string{
		"🛒 <b>Новая покупка</b>",
		"",
	}
	if note.UserName != "" {
		lines = append(lines, fmt.Sprintf("👤 <b>Имя:</b> %s", escapeHTML(note.UserName)))
	}
	lines = append(lines,
		fmt.Sprintf("📧 <b>Email:</b> %s", escapeHTML(note.UserEmail)),
		fmt.Sprintf("📦 <b>Товар:</b> %s", escapeHTML(note.ProductTitle)),
		fmt.Sprintf("💰 <b>Сумма:</b> %s ₽", mail.FormatRubles(note.Price)),
		fmt.Sprintf("🆔 <b>ID заказа:</b> <code>%s</code>", note.PurchaseID),
		fmt.Sprintf("📅 <b>Дата:</b> %s", note.CreatedAt.Format("02.01.2006 15:04")),
	)
	return strings.Join(lines, "\n")
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
