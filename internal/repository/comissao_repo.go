package repository

import (
	"context"

	"barpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TotalComissaoPorStatus is one row of a per-companion commission summary.
type TotalComissaoPorStatus struct {
	Status     string
	Quantidade int64
	ValorBruto decimal.Decimal
	Comissao   decimal.Decimal
}

type ComissaoRepository interface {
	CreateTx(tx *gorm.DB, registros []model.RegistroComissao) error
	ListByOrigem(ctx context.Context, origemTipo string, origemID uuid.UUID) ([]model.RegistroComissao, error)
	// SomarPorAcompanhante groups a companion's records by status, optionally
	// restricted to one activation period.
	SomarPorAcompanhante(ctx context.Context, acompanhanteID uuid.UUID, ativacaoID *uuid.UUID) ([]TotalComissaoPorStatus, error)
}

type comissaoRepo struct{ db *gorm.DB }

func NewComissaoRepository(db *gorm.DB) ComissaoRepository { return &comissaoRepo{db: db} }

// CreateTx inserts all records of one charge. The (origem_tipo, origem_id,
// acompanhante_id) unique index rejects a second accrual for the same charge.
func (r *comissaoRepo) CreateTx(tx *gorm.DB, registros []model.RegistroComissao) error {
	if len(registros) == 0 {
		return nil
	}
	return translate(tx.Create(&registros).Error)
}

func (r *comissaoRepo) ListByOrigem(ctx context.Context, origemTipo string, origemID uuid.UUID) ([]model.RegistroComissao, error) {
	var out []model.RegistroComissao
	err := r.db.WithContext(ctx).
		Where("origem_tipo = ? AND origem_id = ?", origemTipo, origemID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *comissaoRepo) SomarPorAcompanhante(ctx context.Context, acompanhanteID uuid.UUID, ativacaoID *uuid.UUID) ([]TotalComissaoPorStatus, error) {
	// Sum in Go: decimal columns come back as text on sqlite and the
	// amounts per companion are small.
	q := r.db.WithContext(ctx).Where("acompanhante_id = ?", acompanhanteID)
	if ativacaoID != nil {
		q = q.Where("ativacao_id = ?", *ativacaoID)
	}
	var registros []model.RegistroComissao
	if err := q.Order("created_at ASC").Find(&registros).Error; err != nil {
		return nil, err
	}
	idx := map[string]int{}
	var out []TotalComissaoPorStatus
	for _, reg := range registros {
		i, ok := idx[reg.Status]
		if !ok {
			i = len(out)
			idx[reg.Status] = i
			out = append(out, TotalComissaoPorStatus{Status: reg.Status})
		}
		out[i].Quantidade++
		out[i].ValorBruto = out[i].ValorBruto.Add(reg.ValorBruto)
		out[i].Comissao = out[i].Comissao.Add(reg.ValorComissao)
	}
	return out, nil
}
