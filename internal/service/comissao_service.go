package service

import (
	"context"
	"errors"
	"time"

	"barpos/internal/dto"
	"barpos/internal/model"
	"barpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var cem = decimal.NewFromInt(100)

// Participante is one companion sharing a commissioned charge, with the
// percent already resolved (override or directory default) at accrual time.
type Participante struct {
	AcompanhanteID uuid.UUID
	AtivacaoID     *uuid.UUID
	Percentual     decimal.Decimal
}

// OrigemComissao identifies the charge a set of commission records belongs to.
type OrigemComissao struct {
	Tipo string // model.OrigemOcupacao | model.OrigemItemComissionado
	ID   uuid.UUID
}

type ComissaoService interface {
	// AcumularTx writes the commission records of one posted charge and adds
	// their total to the session's TotalComissoes, inside the caller's tx.
	AcumularTx(tx *gorm.DB, sessaoID uuid.UUID, origem OrigemComissao, valor decimal.Decimal, participantes []Participante) ([]model.RegistroComissao, error)
	ResumoAcompanhante(ctx context.Context, acompanhanteID uuid.UUID, ativacaoID *uuid.UUID) (*dto.ResumoComissaoResponse, error)
}

type comissaoService struct {
	repo  repository.ComissaoRepository
	acomp repository.AcompanhanteRepository
	caixa CaixaService
	now   func() time.Time
}

func NewComissaoService(repo repository.ComissaoRepository, acomp repository.AcompanhanteRepository, caixa CaixaService) ComissaoService {
	return &comissaoService{repo: repo, acomp: acomp, caixa: caixa, now: time.Now}
}

func (s *comissaoService) AcumularTx(tx *gorm.DB, sessaoID uuid.UUID, origem OrigemComissao, valor decimal.Decimal, participantes []Participante) ([]model.RegistroComissao, error) {
	if len(participantes) == 0 {
		return nil, nil
	}
	registros, err := calcularComissoes(valor, participantes)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	agora := s.now()
	for i := range registros {
		registros[i].SessaoCaixaID = sessaoID
		registros[i].OrigemTipo = origem.Tipo
		registros[i].OrigemID = origem.ID
		registros[i].CreatedAt = agora
		total = total.Add(registros[i].ValorComissao)
	}
	if err := s.repo.CreateTx(tx, registros); err != nil {
		if errors.Is(err, repository.ErrConflito) {
			return nil, ErrJaFinalizada
		}
		return nil, err
	}
	if err := s.caixa.RegistrarComissaoTx(tx, sessaoID, total); err != nil {
		return nil, err
	}
	return registros, nil
}

func (s *comissaoService) ResumoAcompanhante(ctx context.Context, acompanhanteID uuid.UUID, ativacaoID *uuid.UUID) (*dto.ResumoComissaoResponse, error) {
	a, err := s.acomp.FindByID(ctx, acompanhanteID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNaoEncontrado
		}
		return nil, err
	}
	totais, err := s.repo.SomarPorAcompanhante(ctx, acompanhanteID, ativacaoID)
	if err != nil {
		return nil, err
	}
	resp := &dto.ResumoComissaoResponse{
		AcompanhanteID:  a.ID.String(),
		Nome:            a.Nome,
		PercentualAtual: a.PercentualComissao,
		TotalComissao:   decimal.Zero,
		PorStatus:       make([]dto.TotalComissaoStatus, 0, len(totais)),
	}
	if ativacaoID != nil {
		id := ativacaoID.String()
		resp.AtivacaoID = &id
	}
	for _, t := range totais {
		resp.PorStatus = append(resp.PorStatus, dto.TotalComissaoStatus{
			Status:     t.Status,
			Quantidade: t.Quantidade,
			ValorBruto: t.ValorBruto,
			Comissao:   t.Comissao,
		})
		resp.TotalComissao = resp.TotalComissao.Add(t.Comissao)
	}
	return resp, nil
}

// calcularComissoes splits valor evenly across the participants and applies
// each one's percent. Shares are cut to cents and the leftover cents go to
// the first participant, so the gross shares always add up to valor.
func calcularComissoes(valor decimal.Decimal, participantes []Participante) ([]model.RegistroComissao, error) {
	if valor.IsNegative() {
		return nil, ErrValorInvalido
	}
	n := decimal.NewFromInt(int64(len(participantes)))
	cota := valor.Div(n).RoundDown(2)
	sobra := valor.Sub(cota.Mul(n))

	out := make([]model.RegistroComissao, 0, len(participantes))
	for i, p := range participantes {
		if p.Percentual.IsNegative() || p.Percentual.GreaterThan(cem) {
			return nil, ErrAcompanhanteInvalido
		}
		bruto := cota
		if i == 0 {
			bruto = bruto.Add(sobra)
		}
		out = append(out, model.RegistroComissao{
			AcompanhanteID: p.AcompanhanteID,
			AtivacaoID:     p.AtivacaoID,
			ValorBruto:     bruto,
			Percentual:     p.Percentual,
			ValorComissao:  bruto.Mul(p.Percentual).Div(cem).Round(2),
			Status:         model.ComissaoAcumulada,
		})
	}
	return out, nil
}
