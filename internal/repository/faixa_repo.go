package repository

import (
	"context"

	"barpos/internal/model"

	"gorm.io/gorm"
)

// FaixaRepository reads the billing table. Editing tiers is an admin concern
// handled elsewhere.
type FaixaRepository interface {
	ListAtivasTx(tx *gorm.DB) ([]model.FaixaPreco, error)
	ListAtivas(ctx context.Context) ([]model.FaixaPreco, error)
}

type faixaRepo struct{ db *gorm.DB }

func NewFaixaRepository(db *gorm.DB) FaixaRepository { return &faixaRepo{db: db} }

func (r *faixaRepo) ListAtivasTx(tx *gorm.DB) ([]model.FaixaPreco, error) {
	var faixas []model.FaixaPreco
	err := tx.Where("ativa = ?", true).Order("minutos ASC").Find(&faixas).Error
	return faixas, err
}

func (r *faixaRepo) ListAtivas(ctx context.Context) ([]model.FaixaPreco, error) {
	return r.ListAtivasTx(r.db.WithContext(ctx))
}
