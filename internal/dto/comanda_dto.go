package dto

import "github.com/shopspring/decimal"

type LancarProdutoRequest struct {
	Descricao       string          `json:"descricao"        validate:"required"`
	Quantidade      int             `json:"quantidade"       validate:"required,min=1"`
	ValorUnitario   decimal.Decimal `json:"valor_unitario"   validate:"min=0"`
	AcompanhanteIDs []string        `json:"acompanhante_ids" validate:"omitempty,dive,uuid"`
}

type ItemComandaResponse struct {
	ID            string          `json:"id"`
	Tipo          string          `json:"tipo"`
	Descricao     string          `json:"descricao"`
	Quantidade    int             `json:"quantidade"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
	Valor         decimal.Decimal `json:"valor"`
	OcupacaoID    *string         `json:"ocupacao_id,omitempty"`
}

type ComandaResponse struct {
	ID        string                `json:"id"`
	Numero    int                   `json:"numero"`
	Status    string                `json:"status"`
	Total     decimal.Decimal       `json:"total"`
	Itens     []ItemComandaResponse `json:"itens"`
	AbertaEm  string                `json:"aberta_em"`
	FechadaEm *string               `json:"fechada_em"`
}
