package dto

import "github.com/shopspring/decimal"

type TotalComissaoStatus struct {
	Status     string          `json:"status"`
	Quantidade int64           `json:"quantidade"`
	ValorBruto decimal.Decimal `json:"valor_bruto"`
	Comissao   decimal.Decimal `json:"comissao"`
}

type ResumoComissaoResponse struct {
	AcompanhanteID  string                `json:"acompanhante_id"`
	Nome            string                `json:"nome"`
	AtivacaoID      *string               `json:"ativacao_id"`
	PercentualAtual decimal.Decimal       `json:"percentual_atual"`
	TotalComissao   decimal.Decimal       `json:"total_comissao"`
	PorStatus       []TotalComissaoStatus `json:"por_status"`
}
