package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrigemOcupacao         = "ocupacao"
	OrigemItemComissionado = "item_comissionado"

	ComissaoAcumulada = "acumulada"
	ComissaoPendente  = "pendente"
	ComissaoPaga      = "paga"
)

// RegistroComissao is written once at charge time. Percentual is a copy of the
// rate in force at accrual, never a reference to the companion row.
// Status transitions belong to the settlement workflow.
type RegistroComissao struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AcompanhanteID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:uq_comissao_origem,priority:3"`
	AtivacaoID     *uuid.UUID      `gorm:"type:uuid;index"`
	SessaoCaixaID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrigemTipo     string          `gorm:"type:varchar(20);not null;uniqueIndex:uq_comissao_origem,priority:1"`
	OrigemID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_comissao_origem,priority:2"`
	ValorBruto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Percentual     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	ValorComissao  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status         string          `gorm:"type:varchar(20);not null;default:'acumulada'"`
	CreatedAt      time.Time
}

func (RegistroComissao) TableName() string { return "registros_comissao" }
