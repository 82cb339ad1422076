package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AcompanhanteOcupacao struct {
	ID                 string           `json:"id"                  validate:"required,uuid"`
	PercentualOverride *decimal.Decimal `json:"percentual_override" validate:"omitempty,min=0,max=100"`
}

type OcuparRequest struct {
	QuartoID      string                 `json:"quarto_id"     validate:"required,uuid"`
	ComandaID     string                 `json:"comanda_id"    validate:"required,uuid"`
	Modo          string                 `json:"modo"          validate:"required,oneof=fixo tempo_livre"`
	FaixaID       *string                `json:"faixa_id"      validate:"omitempty,uuid"`
	Acompanhantes []AcompanhanteOcupacao `json:"acompanhantes" validate:"required,min=1,dive"`
}

type CancelarOcupacaoRequest struct {
	Motivo string `json:"motivo" validate:"required"`
}

type ConfirmarTempoLivreRequest struct {
	ValorFinal decimal.Decimal `json:"valor_final" validate:"min=0"`
	FaixaID    *string         `json:"faixa_id"    validate:"omitempty,uuid"`
	Observacao *string         `json:"observacao"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FaixaResponse struct {
	ID      string          `json:"id"`
	Minutos int             `json:"minutos"`
	Preco   decimal.Decimal `json:"preco"`
	Rotulo  string          `json:"rotulo"`
}

type CalculoTempoLivreResponse struct {
	OcupacaoID string          `json:"ocupacao_id"`
	Faixa      FaixaResponse   `json:"faixa"`
	Valor      decimal.Decimal `json:"valor"`
	Minutos    int             `json:"minutos"`
	Teto       bool            `json:"teto"`
	EntradaEm  string          `json:"entrada_em"`
	SaidaEm    string          `json:"saida_em"`
}

type OcupacaoResponse struct {
	ID                 string           `json:"id"`
	QuartoID           string           `json:"quarto_id"`
	ComandaID          string           `json:"comanda_id"`
	Modo               string           `json:"modo"`
	Status             string           `json:"status"`
	Acompanhantes      []string         `json:"acompanhantes"`
	IniciadaEm         string           `json:"iniciada_em"`
	FaixaAberturaID    *string          `json:"faixa_abertura_id,omitempty"`
	PrecoAbertura      *decimal.Decimal `json:"preco_abertura,omitempty"`
	ValorSugerido      *decimal.Decimal `json:"valor_sugerido,omitempty"`
	CalculadaEm        *string          `json:"calculada_em,omitempty"`
	ValorCobrado       *decimal.Decimal `json:"valor_cobrado,omitempty"`
	FaixaCobradaID     *string          `json:"faixa_cobrada_id,omitempty"`
	ValorAjustado      bool             `json:"valor_ajustado"`
	FinalizadaEm       *string          `json:"finalizada_em,omitempty"`
	MotivoCancelamento *string          `json:"motivo_cancelamento,omitempty"`
}
