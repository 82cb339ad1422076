package infra

import (
	"fmt"
	"net/smtp"

	"barpos/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends management e-mails through the configured SMTP relay.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Configurado is false when no relay host was given; the e-mail step is
// then skipped.
func (m *Mailer) Configurado() bool { return m.host != "" }

// Enviar sends a plain-text message, attaching the file at anexo if set.
func (m *Mailer) Enviar(para, assunto, corpo, anexo string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{para}
	e.Subject = assunto
	e.Text = []byte(corpo)

	if anexo != "" {
		if _, err := e.AttachFile(anexo); err != nil {
			return fmt.Errorf("mailer: anexar PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
