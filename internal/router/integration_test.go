//go:build integration

package router

// Integration tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v
//
// They cover what the SQLite suite cannot: row locks and partial unique
// indexes under truly concurrent connections, Pub/Sub delivery, and the
// closing-slip job going through the Redis queue.

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"barpos/internal/config"
	"barpos/internal/dto"
	"barpos/internal/infra"
	"barpos/internal/model"
	"barpos/internal/service"
	"barpos/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

type integracaoEnv struct {
	db   *gorm.DB
	rdb  *redis.Client
	svcs *Services
}

func setupIntegracao(t *testing.T) *integracaoEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("barpos_test"),
		tcPostgres.WithUsername("barpos"),
		tcPostgres.WithPassword("barpos"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := infra.NewDatabase(pgURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, rdURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{Env: "test", ToleranciaMinutos: 10}
	svcs := NewServices(cfg, db, infra.NewRedisNotificador(rdb), worker.NewDispatcher(rdb))
	return &integracaoEnv{db: db, rdb: rdb, svcs: svcs}
}

// seed creates tiers, one room, one companion active today, an open register
// and one tab.
func (e *integracaoEnv) seed(t *testing.T) (model.Quarto, model.Acompanhante, *dto.ComandaResponse) {
	t.Helper()
	ctx := context.Background()
	faixas := []model.FaixaPreco{
		{Minutos: 30, Preco: decimal.NewFromInt(10), Rotulo: "30 min", Ativa: true},
		{Minutos: 60, Preco: decimal.NewFromInt(20), Rotulo: "1 hora", Ativa: true},
		{Minutos: 120, Preco: decimal.NewFromInt(35), Rotulo: "2 horas", Ativa: true},
	}
	require.NoError(t, e.db.Create(&faixas).Error)
	q := model.Quarto{Numero: "01", Ativo: true}
	require.NoError(t, e.db.Create(&q).Error)
	a := model.Acompanhante{Nome: "Ana", PercentualComissao: decimal.NewFromInt(40), Ativo: true}
	require.NoError(t, e.db.Create(&a).Error)
	require.NoError(t, e.db.Create(&model.AtivacaoAcompanhante{
		AcompanhanteID: a.ID, Dia: time.Now().Format("2006-01-02"), IniciadaEm: time.Now(),
	}).Error)

	_, err := e.svcs.Caixa.Abrir(ctx, uuid.New(), dto.AbrirCaixaRequest{SaldoInicial: decimal.NewFromInt(100)})
	require.NoError(t, err)
	com, err := e.svcs.Comandas.Abrir(ctx, uuid.New())
	require.NoError(t, err)
	return q, a, com
}

func TestIntegracao(t *testing.T) {
	env := setupIntegracao(t)
	ctx := context.Background()
	quarto, acomp, comanda := env.seed(t)

	t.Run("concurrent occupy has a single winner", func(t *testing.T) {
		sub := env.rdb.Subscribe(ctx, infra.CanalQuartos)
		defer sub.Close()
		_, err := sub.Receive(ctx)
		require.NoError(t, err)

		req := dto.OcuparRequest{
			QuartoID:      quarto.ID.String(),
			ComandaID:     comanda.ID,
			Modo:          model.ModoTempoLivre,
			Acompanhantes: []dto.AcompanhanteOcupacao{{ID: acomp.ID.String()}},
		}
		const n = 10
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			vencedor *dto.OcupacaoResponse
			erros    []error
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, err := env.svcs.Ocupacoes.Ocupar(ctx, uuid.New(), req)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					erros = append(erros, err)
					return
				}
				vencedor = resp
			}()
		}
		wg.Wait()

		require.NotNil(t, vencedor)
		require.Len(t, erros, n-1)
		for _, err := range erros {
			assert.ErrorIs(t, err, service.ErrQuartoOcupado)
		}

		select {
		case msg := <-sub.Channel():
			var ev infra.Evento
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
			assert.Equal(t, "quarto_ocupado", ev.Tipo)
			assert.Equal(t, quarto.ID.String(), ev.ID)
		case <-time.After(5 * time.Second):
			t.Fatal("no room event received")
		}

		id := uuid.MustParse(vencedor.ID)
		_, err = env.svcs.TempoLivre.Calcular(ctx, id)
		require.NoError(t, err)
		_, err = env.svcs.TempoLivre.Confirmar(ctx, uuid.New(), id, dto.ConfirmarTempoLivreRequest{ValorFinal: decimal.NewFromInt(10)})
		require.NoError(t, err)
	})

	t.Run("concurrent register open has a single winner", func(t *testing.T) {
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			conflito int
		)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.svcs.Caixa.Abrir(ctx, uuid.New(), dto.AbrirCaixaRequest{})
				mu.Lock()
				defer mu.Unlock()
				if errors.Is(err, service.ErrSessaoJaAberta) {
					conflito++
				}
			}()
		}
		wg.Wait()
		// The seeded session is still open, so every attempt conflicts.
		assert.Equal(t, 5, conflito)
	})

	t.Run("closing queues the slip job", func(t *testing.T) {
		dir := t.TempDir()
		wctx, cancel := context.WithCancel(ctx)
		wg := worker.StartWorkerPool(wctx, env.rdb, 1, map[string]worker.Handler{
			worker.QueueFechamento: worker.NewFechamentoWorker(env.svcs.Caixa, nil, dir, ""),
		})
		defer func() {
			cancel()
			wg.Wait()
		}()

		_, err := env.svcs.Comandas.Fechar(ctx, uuid.MustParse(comanda.ID))
		require.NoError(t, err)
		fech, err := env.svcs.Caixa.Fechar(ctx, uuid.New(), dto.FecharCaixaRequest{SaldoContado: decimal.NewFromInt(110)})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(110).Equal(fech.SaldoEsperado))
		assert.Equal(t, "normal", fech.Diferenca.Classificacao)

		pdf := filepath.Join(dir, "fechamento_"+fech.SessaoCaixaID+".pdf")
		require.Eventually(t, func() bool {
			_, err := os.Stat(pdf)
			return err == nil
		}, 15*time.Second, 200*time.Millisecond)

		n, err := worker.DLQLength(ctx, env.rdb, worker.QueueFechamento)
		require.NoError(t, err)
		assert.Zero(t, n)

		payload := json.RawMessage(`{"sessao_caixa_id":"` + uuid.NewString() + `"}`)
		worker.SendToDLQ(ctx, env.rdb, worker.QueueFechamento, "fechamento_caixa", payload, "sessão inexistente", 1)
		entradas, err := worker.ListDLQ(ctx, env.rdb, worker.QueueFechamento, 10)
		require.NoError(t, err)
		require.Len(t, entradas, 1)
		assert.Equal(t, "fechamento_caixa", entradas[0].JobType)
		assert.Equal(t, "sessão inexistente", entradas[0].Reason)
		assert.JSONEq(t, string(payload), string(entradas[0].Payload))
	})
}
