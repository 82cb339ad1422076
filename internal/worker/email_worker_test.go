package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"barpos/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type remetenteFake struct {
	enviados []EmailJobPayload
	err      error
}

func (r *remetenteFake) Enviar(para, assunto, corpo, anexo string) error {
	if r.err != nil {
		return r.err
	}
	r.enviados = append(r.enviados, EmailJobPayload{Para: para, Assunto: assunto, Corpo: corpo, Anexo: anexo})
	return nil
}

func newBreaker() *infra.CircuitBreaker {
	return infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Nome: "smtp", FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Hour})
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestEmailWorker_Sends(t *testing.T) {
	r := &remetenteFake{}
	w := NewEmailWorker(r, newBreaker())

	job := EmailJobPayload{Para: "gerencia@bar.local", Assunto: "Fechamento", Corpo: "ok", Anexo: "/tmp/x.pdf"}
	require.NoError(t, w.Process(context.Background(), payload(t, job)))
	require.Len(t, r.enviados, 1)
	assert.Equal(t, job, r.enviados[0])
}

func TestEmailWorker_InvalidPayloadIsPermanent(t *testing.T) {
	w := NewEmailWorker(&remetenteFake{}, newBreaker())

	err := w.Process(context.Background(), json.RawMessage(`{not json`))
	assert.True(t, isPermanente(err))

	err = w.Process(context.Background(), payload(t, EmailJobPayload{Assunto: "sem destinatario"}))
	assert.True(t, isPermanente(err))
}

func TestEmailWorker_BreakerOpensAfterFailures(t *testing.T) {
	falha := errors.New("dial tcp: connection refused")
	r := &remetenteFake{err: falha}
	w := NewEmailWorker(r, newBreaker())
	job := payload(t, EmailJobPayload{Para: "gerencia@bar.local"})

	assert.ErrorIs(t, w.Process(context.Background(), job), falha)
	assert.ErrorIs(t, w.Process(context.Background(), job), falha)

	err := w.Process(context.Background(), job)
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.False(t, isPermanente(err), "an open breaker re-queues the job")
}
