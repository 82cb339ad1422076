package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ModoFixo       = "fixo"
	ModoTempoLivre = "tempo_livre"

	OcupacaoAberta     = "aberta"
	OcupacaoCalculando = "calculando"
	OcupacaoFinalizada = "finalizada"
	OcupacaoCancelada  = "cancelada"
)

// StatusOcupacaoAtiva lists the states that hold the room.
// The partial unique index uq_ocupacoes_quarto_ativa is built on the same list.
var StatusOcupacaoAtiva = []string{OcupacaoAberta, OcupacaoCalculando}

// Ocupacao is one use of a room, billed either at a pre-agreed tier (fixo) or
// by elapsed time at exit (tempo_livre). Rows are never deleted.
// Status: "aberta" | "calculando" | "finalizada" | "cancelada"
type Ocupacao struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	QuartoID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ComandaID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Modo       string     `gorm:"type:varchar(20);not null"`
	Status     string     `gorm:"type:varchar(20);not null;default:'aberta';index"`
	IniciadaEm time.Time  `gorm:"not null"`
	UsuarioID  *uuid.UUID `gorm:"type:uuid"`

	// Fixed mode: tier and price agreed at open.
	FaixaAberturaID *uuid.UUID       `gorm:"type:uuid"`
	PrecoAbertura   *decimal.Decimal `gorm:"type:decimal(12,2)"`

	// Free-time snapshot taken by Calcular; cleared by CancelarCalculo.
	CalculadaEm       *time.Time
	MinutosCalculados *int
	FaixaSugeridaID   *uuid.UUID       `gorm:"type:uuid"`
	ValorSugerido     *decimal.Decimal `gorm:"type:decimal(12,2)"`

	FinalizadaEm         *time.Time
	UsuarioFinalizacaoID *uuid.UUID       `gorm:"type:uuid"`
	ValorCobrado         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	FaixaCobradaID       *uuid.UUID       `gorm:"type:uuid"`
	ValorAjustado        bool             `gorm:"not null;default:false"`
	ObservacaoAjuste     *string

	CanceladaEm        *time.Time
	MotivoCancelamento *string

	Acompanhantes []OcupacaoAcompanhante `gorm:"foreignKey:OcupacaoID"`
}

func (Ocupacao) TableName() string { return "ocupacoes" }

// Ativa reports whether the occupation still holds its room.
func (o *Ocupacao) Ativa() bool {
	return o.Status == OcupacaoAberta || o.Status == OcupacaoCalculando
}

// OcupacaoAcompanhante attaches a companion to an occupation, under the
// activation period in force when the service started.
// PercentualOverride, when set, replaces the companion's default commission
// percent for this charge.
type OcupacaoAcompanhante struct {
	OcupacaoID         uuid.UUID        `gorm:"type:uuid;primaryKey"`
	AcompanhanteID     uuid.UUID        `gorm:"type:uuid;primaryKey"`
	AtivacaoID         *uuid.UUID       `gorm:"type:uuid"`
	PercentualOverride *decimal.Decimal `gorm:"type:decimal(5,2)"`
}

func (OcupacaoAcompanhante) TableName() string { return "ocupacao_acompanhantes" }
