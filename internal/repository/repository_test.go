package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"barpos/internal/infra"
	"barpos/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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

func sessao(status string) *model.SessaoCaixa {
	return &model.SessaoCaixa{
		SaldoInicial: decimal.Zero, TotalVendas: decimal.Zero, TotalComissoes: decimal.Zero, TotalSangrias: decimal.Zero,
		Status: status, AbertaEm: time.Now(),
	}
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrConflito)
	assert.ErrorIs(t, translate(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})), ErrConflito)
	assert.ErrorIs(t, translate(errors.New("UNIQUE constraint failed: ocupacoes.quarto_id")), ErrConflito)

	outro := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, error(outro), translate(outro))
}

func TestSessaoAbertaIsUnique(t *testing.T) {
	db := newTestDB(t)
	repo := NewCaixaRepository(db)

	require.NoError(t, repo.CreateSessaoTx(db, sessao(model.CaixaFechada)))
	require.NoError(t, repo.CreateSessaoTx(db, sessao(model.CaixaFechada)))
	require.NoError(t, repo.CreateSessaoTx(db, sessao(model.CaixaAberta)))
	assert.ErrorIs(t, repo.CreateSessaoTx(db, sessao(model.CaixaAberta)), ErrConflito)
}

func TestIncrementarTotal(t *testing.T) {
	db := newTestDB(t)
	repo := NewCaixaRepository(db)
	s := sessao(model.CaixaAberta)
	require.NoError(t, repo.CreateSessaoTx(db, s))

	require.NoError(t, repo.IncrementarTotalTx(db, s.ID, ColunaTotalVendas, decimal.RequireFromString("10.50")))
	require.NoError(t, repo.IncrementarTotalTx(db, s.ID, ColunaTotalVendas, decimal.RequireFromString("4.25")))
	assert.Error(t, repo.IncrementarTotalTx(db, s.ID, "saldo_inicial", decimal.NewFromInt(1)))

	got, err := repo.FindSessaoByIDTx(db, s.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("14.75").Equal(got.TotalVendas), got.TotalVendas.String())

	require.NoError(t, db.Model(&model.SessaoCaixa{}).Where("id = ?", s.ID).Update("status", model.CaixaFechada).Error)
	err = repo.IncrementarTotalTx(db, s.ID, ColunaTotalVendas, decimal.NewFromInt(1))
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(repo.TravarSessaoTx(db, s.ID)))
}

func TestOcupacaoAtivaIsUniquePerRoom(t *testing.T) {
	db := newTestDB(t)
	repo := NewOcupacaoRepository(db)
	quarto := uuid.New()

	nova := func(status string) *model.Ocupacao {
		return &model.Ocupacao{QuartoID: quarto, ComandaID: uuid.New(), Modo: model.ModoTempoLivre, Status: status, IniciadaEm: time.Now()}
	}
	require.NoError(t, repo.CreateTx(db, nova(model.OcupacaoFinalizada)))
	require.NoError(t, repo.CreateTx(db, nova(model.OcupacaoCancelada)))
	ativa := nova(model.OcupacaoAberta)
	require.NoError(t, repo.CreateTx(db, ativa))
	assert.ErrorIs(t, repo.CreateTx(db, nova(model.OcupacaoAberta)), ErrConflito)
	assert.ErrorIs(t, repo.CreateTx(db, nova(model.OcupacaoCalculando)), ErrConflito)

	found, err := repo.FindAtivaPorQuartoTx(db, quarto)
	require.NoError(t, err)
	assert.Equal(t, ativa.ID, found.ID)

	ok, err := repo.TransicionarTx(db, ativa.ID, []string{model.OcupacaoCalculando}, map[string]any{"status": model.OcupacaoFinalizada})
	require.NoError(t, err)
	assert.False(t, ok, "transition from the wrong state matches nothing")

	ok, err = repo.TransicionarTx(db, ativa.ID, model.StatusOcupacaoAtiva, map[string]any{"status": model.OcupacaoCancelada})
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, repo.CreateTx(db, nova(model.OcupacaoAberta)))
}

func TestComandaNumbering(t *testing.T) {
	db := newTestDB(t)
	repo := NewComandaRepository(db)
	sessaoA, sessaoB := uuid.New(), uuid.New()

	for i := 1; i <= 3; i++ {
		n, err := repo.NextNumeroTx(db, sessaoA)
		require.NoError(t, err)
		assert.Equal(t, i, n)
		require.NoError(t, repo.CreateTx(db, &model.Comanda{Numero: n, Status: model.ComandaAberta, Total: decimal.Zero, SessaoCaixaID: sessaoA, AbertaEm: time.Now()}))
	}
	n, err := repo.NextNumeroTx(db, sessaoB)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLancarCobrancaRequiresOpenTab(t *testing.T) {
	db := newTestDB(t)
	repo := NewComandaRepository(db)
	c := &model.Comanda{Numero: 1, Status: model.ComandaAberta, Total: decimal.Zero, SessaoCaixaID: uuid.New(), AbertaEm: time.Now()}
	require.NoError(t, repo.CreateTx(db, c))

	item := func(v int64) *model.ItemComanda {
		return &model.ItemComanda{ComandaID: c.ID, Tipo: model.ItemProduto, Descricao: "Cerveja", Quantidade: 1,
			ValorUnitario: decimal.NewFromInt(v), Valor: decimal.NewFromInt(v), CreatedAt: time.Now()}
	}
	require.NoError(t, repo.LancarCobrancaTx(db, item(8)))
	require.NoError(t, repo.LancarCobrancaTx(db, item(12)))

	got, err := repo.FindByIDTx(db, c.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(got.Total))
	assert.Len(t, got.Itens, 2)

	ok, err := repo.TransicionarTx(db, c.ID, model.ComandaFechada, time.Now())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, IsNotFound(repo.LancarCobrancaTx(db, item(5))))

	n, err := repo.CountItensTx(db, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestRunMigrationsCreatesPartialIndexes(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, infra.RunMigrations(db), "migrations must be re-runnable")

	for _, tabela := range []string{"ocupacoes", "sessoes_caixa", "comandas", "ocupacao_acompanhantes"} {
		assert.True(t, db.Migrator().HasTable(tabela), tabela)
	}
	for _, idx := range []string{"uq_ocupacoes_quarto_ativa", "uq_sessoes_caixa_aberta", "idx_comandas_sessao_status"} {
		var n int64
		require.NoError(t, db.Raw("SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = ?", idx).Scan(&n).Error)
		assert.EqualValues(t, 1, n, idx)
	}
}

func TestFindAtivosIgnoresShiftDate(t *testing.T) {
	db := newTestDB(t)
	repo := NewAcompanhanteRepository(db)

	noturna := model.Acompanhante{Nome: "Ana", PercentualComissao: decimal.NewFromInt(40), Ativo: true}
	encerrada := model.Acompanhante{Nome: "Bia", PercentualComissao: decimal.NewFromInt(40), Ativo: true}
	inativa := model.Acompanhante{Nome: "Cris", PercentualComissao: decimal.NewFromInt(40), Ativo: false}
	require.NoError(t, db.Create(&noturna).Error)
	require.NoError(t, db.Create(&encerrada).Error)
	require.NoError(t, db.Create(&inativa).Error)

	ontem := time.Now().Add(-26 * time.Hour)
	fim := time.Now().Add(-time.Hour)
	antiga := model.AtivacaoAcompanhante{AcompanhanteID: noturna.ID, Dia: "2026-03-10", IniciadaEm: ontem.Add(-48 * time.Hour), EncerradaEm: &fim}
	aberta := model.AtivacaoAcompanhante{AcompanhanteID: noturna.ID, Dia: ontem.Format("2006-01-02"), IniciadaEm: ontem}
	require.NoError(t, db.Create(&antiga).Error)
	require.NoError(t, db.Create(&aberta).Error)
	require.NoError(t, db.Create(&model.AtivacaoAcompanhante{AcompanhanteID: encerrada.ID, Dia: ontem.Format("2006-01-02"), IniciadaEm: ontem, EncerradaEm: &fim}).Error)
	require.NoError(t, db.Create(&model.AtivacaoAcompanhante{AcompanhanteID: inativa.ID, Dia: ontem.Format("2006-01-02"), IniciadaEm: ontem}).Error)

	ativos, err := repo.FindAtivosTx(db, []uuid.UUID{noturna.ID, encerrada.ID, inativa.ID})
	require.NoError(t, err)
	require.Len(t, ativos, 1)
	assert.Equal(t, noturna.ID, ativos[0].ID)
	assert.Equal(t, aberta.ID, ativos[0].AtivacaoID)
}
