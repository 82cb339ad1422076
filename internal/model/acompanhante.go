package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Acompanhante is read from the companion directory; the billing engine never writes it.
type Acompanhante struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Nome               string          `gorm:"not null"`
	PercentualComissao decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Ativo              bool            `gorm:"not null"`
	CreatedAt          time.Time
}

// AtivacaoAcompanhante is a companion's working period (shift).
// A companion is active while one of its activations has no EncerradaEm;
// Dia is the date the shift started and may lie before today.
type AtivacaoAcompanhante struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	AcompanhanteID uuid.UUID `gorm:"type:uuid;not null;index"`
	Dia            string    `gorm:"type:varchar(10);not null;index"` // YYYY-MM-DD
	IniciadaEm     time.Time `gorm:"not null"`
	EncerradaEm    *time.Time
}

func (AtivacaoAcompanhante) TableName() string { return "ativacoes_acompanhante" }
