package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"barpos/internal/dto"
	"barpos/internal/infra"
	"barpos/internal/model"
	"barpos/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ── Test database ─────────────────────────────────────────────────────────────
// Each test gets its own in-memory SQLite database with the production schema,
// partial unique indexes included. One connection serializes transactions the
// way row locks do on Postgres.

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.RunMigrations(db))
	return db
}

// relogio is a controllable clock shared by every service in a fixture.
type relogio struct {
	mu sync.Mutex
	t  time.Time
}

func (r *relogio) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.t
}

func (r *relogio) Avancar(d time.Duration) {
	r.mu.Lock()
	r.t = r.t.Add(d)
	r.mu.Unlock()
}

func (r *relogio) Dia() string { return r.Now().Format("2006-01-02") }

type notificadorFake struct {
	mu      sync.Mutex
	eventos []infra.Evento
	canais  []string
	err     error
}

func (n *notificadorFake) Publicar(_ context.Context, canal string, ev infra.Evento) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.canais = append(n.canais, canal)
	n.eventos = append(n.eventos, ev)
	return n.err
}

func (n *notificadorFake) tipos() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.eventos))
	for i, e := range n.eventos {
		out[i] = e.Tipo
	}
	return out
}

type fixture struct {
	db          *gorm.DB
	relogio     *relogio
	notificador *notificadorFake
	caixa       *caixaService
	comissao    *comissaoService
	comandas    *comandaService
	ocupacoes   *ocupacaoService
	comissaoRep repository.ComissaoRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	rel := &relogio{t: time.Date(2026, 3, 14, 22, 0, 0, 0, time.Local)}
	notif := &notificadorFake{}

	caixaRepo := repository.NewCaixaRepository(db)
	comandaRepo := repository.NewComandaRepository(db)
	ocupacaoRepo := repository.NewOcupacaoRepository(db)
	acompRepo := repository.NewAcompanhanteRepository(db)
	comissaoRepo := repository.NewComissaoRepository(db)

	caixa := NewCaixaService(caixaRepo, comandaRepo, notif, nil).(*caixaService)
	caixa.now = rel.Now
	comissao := NewComissaoService(comissaoRepo, acompRepo, caixa).(*comissaoService)
	comissao.now = rel.Now
	comandas := NewComandaService(comandaRepo, ocupacaoRepo, acompRepo, caixa, comissao).(*comandaService)
	comandas.now = rel.Now
	ocupacoes := NewOcupacaoService(ocupacaoRepo, repository.NewQuartoRepository(db), repository.NewFaixaRepository(db),
		acompRepo, comandaRepo, comissao, notif, ToleranciaPadrao)
	ocupacoes.now = rel.Now

	return &fixture{
		db:          db,
		relogio:     rel,
		notificador: notif,
		caixa:       caixa,
		comissao:    comissao,
		comandas:    comandas,
		ocupacoes:   ocupacoes,
		comissaoRep: comissaoRepo,
	}
}

// ── Seeds ─────────────────────────────────────────────────────────────────────

func faixa(minutos int, preco int64) model.FaixaPreco {
	return model.FaixaPreco{Minutos: minutos, Preco: decimal.NewFromInt(preco), Rotulo: fmt.Sprintf("%d min", minutos), Ativa: true}
}

func (f *fixture) seedFaixas(t *testing.T, faixas ...model.FaixaPreco) []model.FaixaPreco {
	t.Helper()
	if len(faixas) == 0 {
		faixas = []model.FaixaPreco{faixa(30, 10), faixa(60, 20), faixa(120, 35)}
	}
	require.NoError(t, f.db.Create(&faixas).Error)
	return faixas
}

func (f *fixture) seedQuarto(t *testing.T, numero string) model.Quarto {
	t.Helper()
	q := model.Quarto{Numero: numero, Ativo: true}
	require.NoError(t, f.db.Create(&q).Error)
	return q
}

// seedAcompanhante creates a companion with an open activation for the
// fixture's current day.
func (f *fixture) seedAcompanhante(t *testing.T, nome string, pct int64) model.Acompanhante {
	t.Helper()
	a := model.Acompanhante{Nome: nome, PercentualComissao: decimal.NewFromInt(pct), Ativo: true}
	require.NoError(t, f.db.Create(&a).Error)
	atv := model.AtivacaoAcompanhante{AcompanhanteID: a.ID, Dia: f.relogio.Dia(), IniciadaEm: f.relogio.Now()}
	require.NoError(t, f.db.Create(&atv).Error)
	return a
}

func (f *fixture) abrirCaixa(t *testing.T, saldo int64) *dto.ReporteCaixaResponse {
	t.Helper()
	resp, err := f.caixa.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{SaldoInicial: decimal.NewFromInt(saldo)})
	require.NoError(t, err)
	return resp
}

func (f *fixture) abrirComanda(t *testing.T) *dto.ComandaResponse {
	t.Helper()
	resp, err := f.comandas.Abrir(context.Background(), uuid.New())
	require.NoError(t, err)
	return resp
}

func ocuparReq(q model.Quarto, c *dto.ComandaResponse, modo string, acomps ...model.Acompanhante) dto.OcuparRequest {
	req := dto.OcuparRequest{QuartoID: q.ID.String(), ComandaID: c.ID, Modo: modo}
	for _, a := range acomps {
		req.Acompanhantes = append(req.Acompanhantes, dto.AcompanhanteOcupacao{ID: a.ID.String()})
	}
	return req
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// cenario is a ready bar: register open, tiers 30/60/120 → 10/20/35, one
// room, one companion at 40%, one open tab.
type cenario struct {
	*fixture
	faixas  []model.FaixaPreco
	quarto  model.Quarto
	acomp   model.Acompanhante
	comanda *dto.ComandaResponse
}

func newCenario(t *testing.T) *cenario {
	t.Helper()
	f := newFixture(t)
	c := &cenario{fixture: f}
	c.faixas = f.seedFaixas(t)
	c.quarto = f.seedQuarto(t, "01")
	c.acomp = f.seedAcompanhante(t, "Ana", 40)
	f.abrirCaixa(t, 100)
	c.comanda = f.abrirComanda(t)
	return c
}
