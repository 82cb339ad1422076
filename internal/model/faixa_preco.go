package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FaixaPreco is one (duration, price) bracket of the room billing table.
// Charges snapshot the price and tier id onto the Ocupacao, so editing a
// tier never changes a closed occupation.
type FaixaPreco struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Minutos   int             `gorm:"not null"`
	Preco     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Rotulo    string          `gorm:"type:varchar(60);not null"`
	Ativa     bool            `gorm:"not null;index"`
	CreatedAt time.Time
}

func (FaixaPreco) TableName() string { return "faixas_preco" }
