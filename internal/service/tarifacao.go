package service

import (
	"sort"
	"time"

	"barpos/internal/model"

	"github.com/shopspring/decimal"
)

// ToleranciaPadrao is the grace period, in minutes, before a stay escalates
// to the next tier.
const ToleranciaPadrao = 10

// Resolucao is the tier chosen for an elapsed time.
type Resolucao struct {
	Faixa model.FaixaPreco
	Preco decimal.Decimal
	// Teto is set when the elapsed time exceeded every tier (plus tolerance)
	// and the largest tier was charged as a ceiling.
	Teto bool
}

// ValidarFaixas returns the tiers sorted by duration, or ErrConfiguracaoInvalida
// when the table is empty, has repeated or non-positive durations, negative
// prices, or a longer tier priced below a shorter one.
func ValidarFaixas(faixas []model.FaixaPreco) ([]model.FaixaPreco, error) {
	if len(faixas) == 0 {
		return nil, ErrConfiguracaoInvalida
	}
	ordenadas := make([]model.FaixaPreco, len(faixas))
	copy(ordenadas, faixas)
	sort.SliceStable(ordenadas, func(i, j int) bool { return ordenadas[i].Minutos < ordenadas[j].Minutos })

	for i, f := range ordenadas {
		if f.Minutos <= 0 || f.Preco.IsNegative() {
			return nil, ErrConfiguracaoInvalida
		}
		if i > 0 {
			ant := ordenadas[i-1]
			if f.Minutos == ant.Minutos || f.Preco.LessThan(ant.Preco) {
				return nil, ErrConfiguracaoInvalida
			}
		}
	}
	return ordenadas, nil
}

// ResolverFaixa maps elapsed minutes to a tier. A stay up to
// Minutos+tolerancia still pays that tier; past every tier the largest one
// is charged. minutos <= 0 pays the smallest tier.
func ResolverFaixa(minutos int, faixas []model.FaixaPreco, tolerancia int) (Resolucao, error) {
	ordenadas, err := ValidarFaixas(faixas)
	if err != nil {
		return Resolucao{}, err
	}
	if tolerancia < 0 {
		tolerancia = 0
	}
	if minutos <= 0 {
		return Resolucao{Faixa: ordenadas[0], Preco: ordenadas[0].Preco}, nil
	}
	for _, f := range ordenadas {
		if minutos <= f.Minutos+tolerancia {
			return Resolucao{Faixa: f, Preco: f.Preco}, nil
		}
	}
	teto := ordenadas[len(ordenadas)-1]
	return Resolucao{Faixa: teto, Preco: teto.Preco, Teto: true}, nil
}

// minutosDecorridos truncates to whole minutes: 40m59s counts as 40.
func minutosDecorridos(inicio, fim time.Time) int {
	d := fim.Sub(inicio)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
