package repository

import (
	"context"
	"fmt"

	"barpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Running-total columns of sessoes_caixa that IncrementarTotalTx may touch.
const (
	ColunaTotalVendas    = "total_vendas"
	ColunaTotalComissoes = "total_comissoes"
	ColunaTotalSangrias  = "total_sangrias"
)

type CaixaRepository interface {
	DB() *gorm.DB
	CreateSessaoTx(tx *gorm.DB, s *model.SessaoCaixa) error
	FindSessaoAbertaTx(tx *gorm.DB) (*model.SessaoCaixa, error)
	FindSessaoAberta(ctx context.Context) (*model.SessaoCaixa, error)
	FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error)
	FindSessaoByIDTx(tx *gorm.DB, id uuid.UUID) (*model.SessaoCaixa, error)
	TravarSessaoTx(tx *gorm.DB, id uuid.UUID) error
	IncrementarTotalTx(tx *gorm.DB, sessaoID uuid.UUID, coluna string, valor decimal.Decimal) error
	FecharSessaoTx(tx *gorm.DB, s *model.SessaoCaixa) error
	CreateSangriaTx(tx *gorm.DB, s *model.Sangria) error
	ListSessoes(ctx context.Context, page, limit int) ([]model.SessaoCaixa, int64, error)
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) DB() *gorm.DB { return r.db }

func (r *caixaRepo) CreateSessaoTx(tx *gorm.DB, s *model.SessaoCaixa) error {
	return translate(tx.Create(s).Error)
}

func (r *caixaRepo) FindSessaoAbertaTx(tx *gorm.DB) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := tx.Where("status = ?", model.CaixaAberta).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) FindSessaoAberta(ctx context.Context) (*model.SessaoCaixa, error) {
	return r.FindSessaoAbertaTx(r.db.WithContext(ctx))
}

func (r *caixaRepo) FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).
		Preload("Sangrias", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) FindSessaoByIDTx(tx *gorm.DB, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	if err := tx.First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// TravarSessaoTx takes the session row lock until tx ends, so tab opening and
// register close serialize on it. It fails with gorm.ErrRecordNotFound when
// the session is no longer open.
func (r *caixaRepo) TravarSessaoTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Model(&model.SessaoCaixa{}).
		Where("id = ? AND status = ?", id, model.CaixaAberta).
		Update("status", model.CaixaAberta)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementarTotalTx adds valor to one running total of an open session.
// The status condition makes a concurrent close win: once the row is
// "fechada" the update matches nothing and gorm.ErrRecordNotFound is returned.
func (r *caixaRepo) IncrementarTotalTx(tx *gorm.DB, sessaoID uuid.UUID, coluna string, valor decimal.Decimal) error {
	switch coluna {
	case ColunaTotalVendas, ColunaTotalComissoes, ColunaTotalSangrias:
	default:
		return fmt.Errorf("coluna de total desconhecida: %s", coluna)
	}
	res := tx.Model(&model.SessaoCaixa{}).
		Where("id = ? AND status = ?", sessaoID, model.CaixaAberta).
		Update(coluna, gorm.Expr(coluna+" + ?", valor))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FecharSessaoTx persists the closing figures, conditioned on the session
// still being open.
func (r *caixaRepo) FecharSessaoTx(tx *gorm.DB, s *model.SessaoCaixa) error {
	res := tx.Model(&model.SessaoCaixa{}).
		Where("id = ? AND status = ?", s.ID, model.CaixaAberta).
		Updates(map[string]any{
			"status":                model.CaixaFechada,
			"saldo_esperado":        s.SaldoEsperado,
			"saldo_contado":         s.SaldoContado,
			"diferenca":             s.Diferenca,
			"diferenca_pct":         s.DiferencaPct,
			"classificacao":         s.Classificacao,
			"observacoes":           s.Observacoes,
			"usuario_fechamento_id": s.UsuarioFechamentoID,
			"fechada_em":            s.FechadaEm,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *caixaRepo) CreateSangriaTx(tx *gorm.DB, s *model.Sangria) error {
	return tx.Create(s).Error
}

func (r *caixaRepo) ListSessoes(ctx context.Context, page, limit int) ([]model.SessaoCaixa, int64, error) {
	var sessoes []model.SessaoCaixa
	var total int64
	q := r.db.WithContext(ctx).Model(&model.SessaoCaixa{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("aberta_em DESC").Offset((page - 1) * limit).Limit(limit).Find(&sessoes).Error
	return sessoes, total, err
}
