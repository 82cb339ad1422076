package repository

import (
	"context"

	"barpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AcompanhanteAtivo is a companion as seen by the billing engine: directory
// data plus the activation period it is working under.
type AcompanhanteAtivo struct {
	model.Acompanhante
	AtivacaoID uuid.UUID
}

// AcompanhanteRepository is the read side of the companion directory.
type AcompanhanteRepository interface {
	// FindAtivosTx returns the subset of ids that are active in the directory
	// and hold an open activation. A shift opened before midnight keeps
	// counting until it is closed; Dia only labels the shift.
	FindAtivosTx(tx *gorm.DB, ids []uuid.UUID) ([]AcompanhanteAtivo, error)
	// FindByIDsTx reads directory entries regardless of activity, for
	// pricing commissions at accrual time.
	FindByIDsTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Acompanhante, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Acompanhante, error)
}

type acompanhanteRepo struct{ db *gorm.DB }

func NewAcompanhanteRepository(db *gorm.DB) AcompanhanteRepository {
	return &acompanhanteRepo{db: db}
}

func (r *acompanhanteRepo) FindAtivosTx(tx *gorm.DB, ids []uuid.UUID) ([]AcompanhanteAtivo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var acomps []model.Acompanhante
	if err := tx.Where("id IN ? AND ativo = ?", ids, true).Find(&acomps).Error; err != nil {
		return nil, err
	}
	var ativacoes []model.AtivacaoAcompanhante
	err := tx.Where("acompanhante_id IN ? AND encerrada_em IS NULL", ids).
		Order("iniciada_em DESC").
		Find(&ativacoes).Error
	if err != nil {
		return nil, err
	}
	periodo := make(map[uuid.UUID]uuid.UUID, len(ativacoes))
	for _, a := range ativacoes {
		if _, ok := periodo[a.AcompanhanteID]; !ok {
			periodo[a.AcompanhanteID] = a.ID
		}
	}
	out := make([]AcompanhanteAtivo, 0, len(acomps))
	for _, a := range acomps {
		if atv, ok := periodo[a.ID]; ok {
			out = append(out, AcompanhanteAtivo{Acompanhante: a, AtivacaoID: atv})
		}
	}
	return out, nil
}

func (r *acompanhanteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Acompanhante, error) {
	var a model.Acompanhante
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *acompanhanteRepo) FindByIDsTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Acompanhante, error) {
	var out []model.Acompanhante
	if len(ids) == 0 {
		return out, nil
	}
	err := tx.Where("id IN ?", ids).Find(&out).Error
	return out, err
}
