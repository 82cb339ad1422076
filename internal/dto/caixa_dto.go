package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	SaldoInicial decimal.Decimal `json:"saldo_inicial" validate:"min=0"`
}

type SangriaRequest struct {
	Valor  decimal.Decimal `json:"valor"  validate:"required,gt=0"`
	Motivo string          `json:"motivo" validate:"required"`
}

type FecharCaixaRequest struct {
	SaldoContado decimal.Decimal `json:"saldo_contado" validate:"min=0"`
	Observacoes  *string         `json:"observacoes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SangriaResponse struct {
	ID            string          `json:"id"`
	SessaoCaixaID string          `json:"sessao_caixa_id"`
	Valor         decimal.Decimal `json:"valor"`
	Motivo        string          `json:"motivo"`
	CreatedAt     string          `json:"created_at"`
}

type DiferencaResponse struct {
	Valor         decimal.Decimal `json:"valor"` // positive = sobra, negative = falta
	Percentual    decimal.Decimal `json:"percentual"`
	Classificacao string          `json:"classificacao"` // normal | advertencia | critico
}

type FechamentoCaixaResponse struct {
	SessaoCaixaID string            `json:"sessao_caixa_id"`
	SaldoInicial  decimal.Decimal   `json:"saldo_inicial"`
	TotalVendas   decimal.Decimal   `json:"total_vendas"`
	TotalSangrias decimal.Decimal   `json:"total_sangrias"`
	SaldoEsperado decimal.Decimal   `json:"saldo_esperado"`
	SaldoContado  decimal.Decimal   `json:"saldo_contado"`
	Diferenca     DiferencaResponse `json:"diferenca"`
	Status        string            `json:"status"`
	FechadaEm     string            `json:"fechada_em"`
}

type ReporteCaixaResponse struct {
	SessaoCaixaID  string             `json:"sessao_caixa_id"`
	SaldoInicial   decimal.Decimal    `json:"saldo_inicial"`
	TotalVendas    decimal.Decimal    `json:"total_vendas"`
	TotalComissoes decimal.Decimal    `json:"total_comissoes"`
	TotalSangrias  decimal.Decimal    `json:"total_sangrias"`
	LucroLiquido   decimal.Decimal    `json:"lucro_liquido"`
	SaldoEsperado  decimal.Decimal    `json:"saldo_esperado"`
	SaldoContado   *decimal.Decimal   `json:"saldo_contado"`
	Diferenca      *DiferencaResponse `json:"diferenca"`
	Sangrias       []SangriaResponse  `json:"sangrias"`
	Status         string             `json:"status"`
	Observacoes    *string            `json:"observacoes"`
	AbertaEm       string             `json:"aberta_em"`
	FechadaEm      *string            `json:"fechada_em"`
}
