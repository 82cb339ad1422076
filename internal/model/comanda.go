package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ComandaAberta    = "aberta"
	ComandaFechada   = "fechada"
	ComandaCancelada = "cancelada"

	ItemProduto = "produto"
	ItemQuarto  = "quarto"
)

// Comanda is a customer's running tab.
// Estado: "aberta" | "fechada" | "cancelada"
type Comanda struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Numero        int             `gorm:"not null;index"`
	Status        string          `gorm:"type:varchar(20);not null;default:'aberta';index"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SessaoCaixaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID     *uuid.UUID      `gorm:"type:uuid"`
	AbertaEm      time.Time       `gorm:"not null"`
	FechadaEm     *time.Time

	Itens []ItemComanda `gorm:"foreignKey:ComandaID"`
}

// ItemComanda is an append-only line on a tab. Room charges carry OcupacaoID.
type ItemComanda struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ComandaID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo          string          `gorm:"type:varchar(20);not null"`
	Descricao     string          `gorm:"not null"`
	Quantidade    int             `gorm:"not null;default:1"`
	ValorUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Valor         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OcupacaoID    *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	CreatedAt     time.Time
}

func (ItemComanda) TableName() string { return "itens_comanda" }
