package repository

import (
	"context"

	"barpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OcupacaoRepository interface {
	DB() *gorm.DB
	CreateTx(tx *gorm.DB, o *model.Ocupacao) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Ocupacao, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ocupacao, error)
	FindAtivaPorQuartoTx(tx *gorm.DB, quartoID uuid.UUID) (*model.Ocupacao, error)
	CountAtivasPorComandaTx(tx *gorm.DB, comandaID uuid.UUID) (int64, error)
	// TransicionarTx applies campos only if the row is still in one of de.
	// It returns false when another writer moved the occupation first.
	TransicionarTx(tx *gorm.DB, id uuid.UUID, de []string, campos map[string]any) (bool, error)
	ListAtivas(ctx context.Context) ([]model.Ocupacao, error)
}

type ocupacaoRepo struct{ db *gorm.DB }

func NewOcupacaoRepository(db *gorm.DB) OcupacaoRepository { return &ocupacaoRepo{db: db} }

func (r *ocupacaoRepo) DB() *gorm.DB { return r.db }

// CreateTx inserts the occupation with its companions. A second active
// occupation for the same room violates uq_ocupacoes_quarto_ativa and comes
// back as ErrConflito.
func (r *ocupacaoRepo) CreateTx(tx *gorm.DB, o *model.Ocupacao) error {
	return translate(tx.Create(o).Error)
}

func (r *ocupacaoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Ocupacao, error) {
	var o model.Ocupacao
	if err := tx.Preload("Acompanhantes").First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ocupacaoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Ocupacao, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *ocupacaoRepo) FindAtivaPorQuartoTx(tx *gorm.DB, quartoID uuid.UUID) (*model.Ocupacao, error) {
	var o model.Ocupacao
	err := tx.Where("quarto_id = ? AND status IN ?", quartoID, model.StatusOcupacaoAtiva).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ocupacaoRepo) CountAtivasPorComandaTx(tx *gorm.DB, comandaID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.Ocupacao{}).
		Where("comanda_id = ? AND status IN ?", comandaID, model.StatusOcupacaoAtiva).
		Count(&n).Error
	return n, err
}

func (r *ocupacaoRepo) TransicionarTx(tx *gorm.DB, id uuid.UUID, de []string, campos map[string]any) (bool, error) {
	res := tx.Model(&model.Ocupacao{}).
		Where("id = ? AND status IN ?", id, de).
		Updates(campos)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ocupacaoRepo) ListAtivas(ctx context.Context) ([]model.Ocupacao, error) {
	var out []model.Ocupacao
	err := r.db.WithContext(ctx).
		Preload("Acompanhantes").
		Where("status IN ?", model.StatusOcupacaoAtiva).
		Order("iniciada_em ASC").
		Find(&out).Error
	return out, err
}
