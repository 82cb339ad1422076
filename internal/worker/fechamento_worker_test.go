package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"barpos/internal/dto"
	"barpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reporteLoaderFake struct {
	rep *dto.ReporteCaixaResponse
	err error
}

func (f *reporteLoaderFake) ObterReporte(_ context.Context, id uuid.UUID) (*dto.ReporteCaixaResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := *f.rep
	r.SessaoCaixaID = id.String()
	return &r, nil
}

type emailEnqueuerFake struct{ jobs []EmailJobPayload }

func (f *emailEnqueuerFake) EnqueueEmail(_ context.Context, p EmailJobPayload) error {
	f.jobs = append(f.jobs, p)
	return nil
}

func reporte(status string) *dto.ReporteCaixaResponse {
	contado := decimal.NewFromInt(125)
	return &dto.ReporteCaixaResponse{
		SaldoInicial:   decimal.NewFromInt(100),
		TotalVendas:    decimal.NewFromInt(50),
		TotalComissoes: decimal.NewFromInt(10),
		TotalSangrias:  decimal.NewFromInt(20),
		LucroLiquido:   decimal.NewFromInt(40),
		SaldoEsperado:  decimal.NewFromInt(130),
		SaldoContado:   &contado,
		Diferenca:      &dto.DiferencaResponse{Valor: decimal.NewFromInt(-5), Percentual: decimal.RequireFromString("-3.85"), Classificacao: "advertencia"},
		Sangrias:       []dto.SangriaResponse{},
		Status:         status,
		AbertaEm:       "2026-03-14T20:00:00Z",
	}
}

func TestFechamentoWorker_GeneratesSlipAndQueuesEmail(t *testing.T) {
	dir := t.TempDir()
	emails := &emailEnqueuerFake{}
	w := NewFechamentoWorker(&reporteLoaderFake{rep: reporte(model.CaixaFechada)}, emails, dir, "gerencia@bar.local")

	sessao := uuid.New()
	raw, err := json.Marshal(FechamentoJobPayload{SessaoCaixaID: sessao.String()})
	require.NoError(t, err)
	require.NoError(t, w.Process(context.Background(), raw))

	require.Len(t, emails.jobs, 1)
	job := emails.jobs[0]
	assert.Equal(t, "gerencia@bar.local", job.Para)
	assert.Equal(t, "Fechamento de caixa 2026-03-14", job.Assunto)
	assert.Contains(t, job.Corpo, "advertencia")
	assert.Contains(t, job.Corpo, "Lucro líquido: R$ 40.00")
	_, err = os.Stat(job.Anexo)
	assert.NoError(t, err)
}

func TestFechamentoWorker_NoRecipientOnlyRenders(t *testing.T) {
	emails := &emailEnqueuerFake{}
	w := NewFechamentoWorker(&reporteLoaderFake{rep: reporte(model.CaixaFechada)}, emails, t.TempDir(), "")

	raw, _ := json.Marshal(FechamentoJobPayload{SessaoCaixaID: uuid.NewString()})
	require.NoError(t, w.Process(context.Background(), raw))
	assert.Empty(t, emails.jobs)
}

func TestFechamentoWorker_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	w := NewFechamentoWorker(&reporteLoaderFake{rep: reporte(model.CaixaFechada)}, nil, dir, "")
	assert.True(t, isPermanente(w.Process(ctx, json.RawMessage(`{"sessao_caixa_id":"nope"}`))))

	w = NewFechamentoWorker(&reporteLoaderFake{rep: reporte(model.CaixaAberta)}, nil, dir, "")
	raw, _ := json.Marshal(FechamentoJobPayload{SessaoCaixaID: uuid.NewString()})
	assert.True(t, isPermanente(w.Process(ctx, raw)), "an open session never yields a slip")

	transitorio := errors.New("db indisponivel")
	w = NewFechamentoWorker(&reporteLoaderFake{err: transitorio}, nil, dir, "")
	err := w.Process(ctx, raw)
	assert.ErrorIs(t, err, transitorio)
	assert.False(t, isPermanente(err))
}
