package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"

	"github.com/Vahe555123/busines/internal/config"
	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*SMTPMailer)(nil)

// SMTPMailer sends transactional mail over SMTP.
type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	log      zerolog.Logger
}

func NewSMTPMailer(cfg *config.MailConfig, log zerolog.Logger) *SMTPMailer {
	// App passwords copied from provider consoles often contain spaces.
	password := strings.Join(strings.Fields(cfg.Password), "")
	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, password),
		from:     cfg.From,
		fromName: cfg.FromName,
		log:      log.With().Str("component", "mailer").Logger(),
	}
}

func (m *SMTPMailer) SendPurchaseConfirmation(ctx context.Context, to, userName, productTitle string, price int64) error {
	name := ""
	if userName != "" {
		name = ", " + userName
	}
	amount := FormatRubles(price)

	text := fmt.Sprintf(
		"Здравствуйте%s! Спасибо за покупку. Вы оформили: %s (%s ₽). Наши специалисты свяжутся с вами в ближайшее время.",
		name, productTitle, amount,
	)
	html := fmt.Sprintf(`
    <div style="font-family: sans-serif; max-width: 480px; line-height: 1.5;">
      <h2 style="color: #333;">🎉 Поздравляем с покупкой!</h2>
      <p>Здравствуйте%s!</p>
      <p>Спасибо, что выбрали нас. Вы успешно оформили заказ:</p>
      <p style="background: #f5f5f5; padding: 12px 16px; border-radius: 8px; margin: 16px 0;">
        <strong>%s</strong><br/>
        <span style="color: #666;">Сумма: %s ₽</span>
      </p>
      <p><strong>Наши специалисты свяжутся с вами в ближайшее время</strong> для уточнения деталей.</p>
      <p style="color: #666; font-size: 14px;">Если у вас есть вопросы — просто ответьте на это письмо.</p>
    </div>`,
		name, productTitle, amount,
	)

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Поздравляем с покупкой!")
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error().Err(err).Str("to", to).Msg("failed to send purchase confirmation")
		return err
	}
	m.log.Info().Str("to", to).Msg("purchase confirmation sent")
	return nil
}

// FormatRubles renders kopecks as whole rubles with space-grouped thousands,
// the way ru-RU locale formatting does, e.g. 150000 -> "1 500".
func FormatRubles(kopecks int64) string {
	rubles := kopecks / 100
	s := fmt.Sprintf("%d", rubles)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, " ")
	if neg {
		out = "-" + out
	}
	return out
}
