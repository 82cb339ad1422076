package worker

import (
	"context"
	"encoding/json"
	"errors"

	"barpos/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	Para    string `json:"para"`
	Assunto string `json:"assunto"`
	Corpo   string `json:"corpo"`
	Anexo   string `json:"anexo"`
}

// Remetente is the SMTP side of the e-mail worker; *infra.Mailer satisfies it.
type Remetente interface {
	Enviar(para, assunto, corpo, anexo string) error
}

// EmailWorker sends queued e-mails through the circuit breaker.
type EmailWorker struct {
	mailer Remetente
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer Remetente, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanente(err)
	}
	if payload.Para == "" {
		return Permanente(errors.New("email_worker: destinatario vazio"))
	}

	err := w.cb.Execute(func() error {
		return w.mailer.Enviar(payload.Para, payload.Assunto, payload.Corpo, payload.Anexo)
	})
	if err != nil {
		log.Error().Err(err).Str("para", payload.Para).Msg("email_worker: falha ao enviar")
		return err
	}
	log.Info().Str("para", payload.Para).Str("assunto", payload.Assunto).Msg("email_worker: enviado")
	return nil
}
