package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CaixaAberta  = "aberta"
	CaixaFechada = "fechada"
)

// SessaoCaixa represents the lifecycle of the till. Only one may be "aberta"
// (partial unique index uq_sessoes_caixa_aberta).
// Running totals only grow while open; every write is conditioned on status.
type SessaoCaixa struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaldoInicial   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalVendas    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalComissoes decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalSangrias  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status         string          `gorm:"type:varchar(20);not null;default:'aberta'"`

	// Filled on close: SaldoInicial + TotalVendas - TotalSangrias
	SaldoEsperado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	SaldoContado  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferenca     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DiferencaPct  *decimal.Decimal `gorm:"type:decimal(7,2)"`
	// Classificacao: "normal" | "advertencia" | "critico"
	Classificacao *string `gorm:"type:varchar(20)"`
	Observacoes   *string

	UsuarioAberturaID   *uuid.UUID `gorm:"type:uuid"`
	UsuarioFechamentoID *uuid.UUID `gorm:"type:uuid"`
	AbertaEm            time.Time  `gorm:"not null"`
	FechadaEm           *time.Time

	Sangrias []Sangria `gorm:"foreignKey:SessaoCaixaID"`
}

func (SessaoCaixa) TableName() string { return "sessoes_caixa" }

// Sangria is an append-only cash removal. It lowers the expected drawer
// balance but never TotalVendas.
type Sangria struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SessaoCaixaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Valor         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo        string          `gorm:"not null"`
	UsuarioID     *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time
}
