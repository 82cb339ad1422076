package repository

import (
	"context"
	"time"

	"barpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComandaRepository interface {
	DB() *gorm.DB
	CreateTx(tx *gorm.DB, c *model.Comanda) error
	NextNumeroTx(tx *gorm.DB, sessaoID uuid.UUID) (int, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Comanda, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comanda, error)
	// LancarCobrancaTx is the postCharge contract: it appends the line item
	// and bumps the tab total, failing with gorm.ErrRecordNotFound when the
	// tab is no longer open.
	LancarCobrancaTx(tx *gorm.DB, item *model.ItemComanda) error
	CountItensTx(tx *gorm.DB, comandaID uuid.UUID) (int64, error)
	TransicionarTx(tx *gorm.DB, id uuid.UUID, para string, em time.Time) (bool, error)
	CountAbertasTx(tx *gorm.DB) (int64, error)
	ListAbertas(ctx context.Context) ([]model.Comanda, error)
}

type comandaRepo struct{ db *gorm.DB }

func NewComandaRepository(db *gorm.DB) ComandaRepository { return &comandaRepo{db: db} }

func (r *comandaRepo) DB() *gorm.DB { return r.db }

func (r *comandaRepo) CreateTx(tx *gorm.DB, c *model.Comanda) error {
	return translate(tx.Create(c).Error)
}

// NextNumeroTx numbers tabs from 1 within each register session.
func (r *comandaRepo) NextNumeroTx(tx *gorm.DB, sessaoID uuid.UUID) (int, error) {
	var max int
	err := tx.Model(&model.Comanda{}).
		Where("sessao_caixa_id = ?", sessaoID).
		Select("COALESCE(MAX(numero), 0)").
		Scan(&max).Error
	return max + 1, err
}

func (r *comandaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Comanda, error) {
	var c model.Comanda
	err := tx.Preload("Itens", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *comandaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Comanda, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *comandaRepo) LancarCobrancaTx(tx *gorm.DB, item *model.ItemComanda) error {
	res := tx.Model(&model.Comanda{}).
		Where("id = ? AND status = ?", item.ComandaID, model.ComandaAberta).
		Update("total", gorm.Expr("total + ?", item.Valor))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return translate(tx.Create(item).Error)
}

func (r *comandaRepo) CountItensTx(tx *gorm.DB, comandaID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.ItemComanda{}).Where("comanda_id = ?", comandaID).Count(&n).Error
	return n, err
}

func (r *comandaRepo) TransicionarTx(tx *gorm.DB, id uuid.UUID, para string, em time.Time) (bool, error) {
	res := tx.Model(&model.Comanda{}).
		Where("id = ? AND status = ?", id, model.ComandaAberta).
		Updates(map[string]any{"status": para, "fechada_em": em})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountAbertasTx counts tabs that are neither closed nor cancelled, across
// all sessions.
func (r *comandaRepo) CountAbertasTx(tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.Model(&model.Comanda{}).
		Where("status NOT IN ?", []string{model.ComandaFechada, model.ComandaCancelada}).
		Count(&n).Error
	return n, err
}

func (r *comandaRepo) ListAbertas(ctx context.Context) ([]model.Comanda, error) {
	var out []model.Comanda
	err := r.db.WithContext(ctx).Where("status = ?", model.ComandaAberta).Order("numero ASC").Find(&out).Error
	return out, err
}
