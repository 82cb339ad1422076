package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"barpos/internal/dto"
	"barpos/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FechamentoJobPayload names the closed session whose slip must be produced.
type FechamentoJobPayload struct {
	SessaoCaixaID string `json:"sessao_caixa_id"`
}

// ReporteLoader reads the final ledger of a session; the register service
// satisfies it.
type ReporteLoader interface {
	ObterReporte(ctx context.Context, sessaoID uuid.UUID) (*dto.ReporteCaixaResponse, error)
}

// EmailEnqueuer is the part of Dispatcher the closing worker needs.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// FechamentoWorker renders the closing slip PDF and, when a management
// address is configured, queues it for e-mail.
type FechamentoWorker struct {
	reportes     ReporteLoader
	emails       EmailEnqueuer
	storagePath  string
	destinatario string
}

func NewFechamentoWorker(reportes ReporteLoader, emails EmailEnqueuer, storagePath, destinatario string) *FechamentoWorker {
	return &FechamentoWorker{reportes: reportes, emails: emails, storagePath: storagePath, destinatario: destinatario}
}

func (w *FechamentoWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload FechamentoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanente(err)
	}
	sessaoID, err := uuid.Parse(payload.SessaoCaixaID)
	if err != nil {
		return Permanente(fmt.Errorf("fechamento_worker: sessao invalida %q", payload.SessaoCaixaID))
	}

	rep, err := w.reportes.ObterReporte(ctx, sessaoID)
	if err != nil {
		return err
	}
	path, err := infra.GerarComprovanteFechamento(rep, w.storagePath)
	if err != nil {
		return Permanente(err)
	}
	log.Info().Str("sessao_id", rep.SessaoCaixaID).Str("pdf", path).Msg("fechamento_worker: comprovante gerado")

	if w.destinatario == "" || w.emails == nil {
		return nil
	}
	return w.emails.EnqueueEmail(ctx, EmailJobPayload{
		Para:    w.destinatario,
		Assunto: "Fechamento de caixa " + rep.AbertaEm[:min(len(rep.AbertaEm), 10)],
		Corpo:   corpoFechamento(rep),
		Anexo:   path,
	})
}

func corpoFechamento(rep *dto.ReporteCaixaResponse) string {
	s := fmt.Sprintf("Sessão %s\nSaldo esperado: R$ %s\n", rep.SessaoCaixaID, rep.SaldoEsperado.StringFixed(2))
	if rep.SaldoContado != nil {
		s += fmt.Sprintf("Saldo contado: R$ %s\n", rep.SaldoContado.StringFixed(2))
	}
	if rep.Diferenca != nil {
		s += fmt.Sprintf("Diferença: R$ %s (%s)\n", rep.Diferenca.Valor.StringFixed(2), rep.Diferenca.Classificacao)
	}
	s += fmt.Sprintf("Comissões: R$ %s\nLucro líquido: R$ %s\n", rep.TotalComissoes.StringFixed(2), rep.LucroLiquido.StringFixed(2))
	return s
}
