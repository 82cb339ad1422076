package repository

import (
	"context"

	"barpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuartoRepository interface {
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Quarto, error)
	List(ctx context.Context) ([]model.Quarto, error)
}

type quartoRepo struct{ db *gorm.DB }

func NewQuartoRepository(db *gorm.DB) QuartoRepository { return &quartoRepo{db: db} }

func (r *quartoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Quarto, error) {
	var q model.Quarto
	if err := tx.First(&q, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quartoRepo) List(ctx context.Context) ([]model.Quarto, error) {
	var quartos []model.Quarto
	err := r.db.WithContext(ctx).Where("ativo = ?", true).Order("numero ASC").Find(&quartos).Error
	return quartos, err
}
