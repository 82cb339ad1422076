package service

import (
	"context"
	"strings"
	"time"

	"barpos/internal/dto"
	"barpos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TempoLivreService drives the two-step exit of a free-time occupation:
// Calcular freezes the suggested price, the attendant confirms it (or an
// adjusted value) with Confirmar, or backs out with CancelarCalculo.
type TempoLivreService interface {
	Calcular(ctx context.Context, ocupacaoID uuid.UUID) (*dto.CalculoTempoLivreResponse, error)
	Confirmar(ctx context.Context, usuarioID uuid.UUID, ocupacaoID uuid.UUID, req dto.ConfirmarTempoLivreRequest) (*dto.OcupacaoResponse, error)
	CancelarCalculo(ctx context.Context, ocupacaoID uuid.UUID) (*dto.OcupacaoResponse, error)
}

// ── Calcular ──────────────────────────────────────────────────────────────────

func (s *ocupacaoService) Calcular(ctx context.Context, ocupacaoID uuid.UUID) (*dto.CalculoTempoLivreResponse, error) {
	var (
		ocup    *model.Ocupacao
		res     Resolucao
		minutos int
		agora   time.Time
	)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		ocup, err = s.carregarTx(tx, ocupacaoID)
		if err != nil {
			return err
		}
		if !ocup.Ativa() {
			return ErrJaFinalizada
		}
		if ocup.Modo != model.ModoTempoLivre || ocup.Status != model.OcupacaoAberta {
			return ErrTransicaoInvalida
		}

		faixas, err := s.faixas.ListAtivasTx(tx)
		if err != nil {
			return err
		}
		agora = s.now()
		minutos = minutosDecorridos(ocup.IniciadaEm, agora)
		res, err = ResolverFaixa(minutos, faixas, s.toleranciaMin)
		if err != nil {
			return err
		}

		ok, err := s.repo.TransicionarTx(tx, ocup.ID, []string{model.OcupacaoAberta}, map[string]any{
			"status":             model.OcupacaoCalculando,
			"calculada_em":       agora,
			"minutos_calculados": minutos,
			"faixa_sugerida_id":  res.Faixa.ID,
			"valor_sugerido":     res.Preco,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrTransicaoInvalida
		}
		ocup.Status = model.OcupacaoCalculando
		ocup.CalculadaEm = &agora
		ocup.MinutosCalculados = &minutos
		ocup.FaixaSugeridaID = &res.Faixa.ID
		preco := res.Preco
		ocup.ValorSugerido = &preco
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("ocupacao_id", ocup.ID.String()).
		Int("minutos", minutos).
		Str("valor_sugerido", res.Preco.String()).
		Bool("teto", res.Teto).
		Msg("tempo livre calculado")
	s.publicar(ctx, ocup, "quarto_calculando")

	return &dto.CalculoTempoLivreResponse{
		OcupacaoID: ocup.ID.String(),
		Faixa:      faixaToResponse(res.Faixa),
		Valor:      res.Preco,
		Minutos:    minutos,
		Teto:       res.Teto,
		EntradaEm:  ocup.IniciadaEm.Format(time.RFC3339),
		SaidaEm:    agora.Format(time.RFC3339),
	}, nil
}

// ── Confirmar ─────────────────────────────────────────────────────────────────
// The attendant may charge a value other than the suggestion; the change is
// flagged on the occupation together with who finalized it.

func (s *ocupacaoService) Confirmar(ctx context.Context, usuarioID uuid.UUID, ocupacaoID uuid.UUID, req dto.ConfirmarTempoLivreRequest) (*dto.OcupacaoResponse, error) {
	if req.ValorFinal.IsNegative() {
		return nil, ErrValorInvalido
	}
	valor := req.ValorFinal.Round(2)

	var ocup *model.Ocupacao
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		ocup, err = s.carregarTx(tx, ocupacaoID)
		if err != nil {
			return err
		}
		if !ocup.Ativa() {
			return ErrJaFinalizada
		}
		if ocup.Modo != model.ModoTempoLivre || ocup.Status != model.OcupacaoCalculando || ocup.ValorSugerido == nil {
			return ErrTransicaoInvalida
		}

		faixaID := ocup.FaixaSugeridaID
		if req.FaixaID != nil {
			id, err := parseID(*req.FaixaID)
			if err != nil {
				return err
			}
			faixas, err := s.faixas.ListAtivasTx(tx)
			if err != nil {
				return err
			}
			f, ok := buscarFaixa(faixas, id)
			if !ok {
				return ErrFaixaInvalida
			}
			faixaID = &f.ID
		}

		campos := map[string]any{}
		ajustado := !valor.Equal(*ocup.ValorSugerido)
		if ajustado {
			campos["valor_ajustado"] = true
			ocup.ValorAjustado = true
		}
		if req.Observacao != nil {
			if obs := strings.TrimSpace(*req.Observacao); obs != "" {
				campos["observacao_ajuste"] = obs
				ocup.ObservacaoAjuste = &obs
			}
		}
		return s.cobrarTx(tx, usuarioID, ocup, model.OcupacaoCalculando, valor, faixaID, campos)
	})
	if err != nil {
		return nil, err
	}

	ev := log.Info().Str("ocupacao_id", ocup.ID.String()).Str("valor", valor.String())
	if ocup.ValorAjustado {
		ev = ev.Str("valor_sugerido", ocup.ValorSugerido.String()).Bool("ajustado", true)
	}
	ev.Msg("tempo livre confirmado")
	s.publicar(ctx, ocup, "quarto_liberado")
	return ocupacaoToResponse(ocup), nil
}

// ── CancelarCalculo ───────────────────────────────────────────────────────────
// Back to aberta with the snapshot cleared; the clock keeps running from
// IniciadaEm, so a later Calcular sees the longer stay.

func (s *ocupacaoService) CancelarCalculo(ctx context.Context, ocupacaoID uuid.UUID) (*dto.OcupacaoResponse, error) {
	var ocup *model.Ocupacao
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		ocup, err = s.carregarTx(tx, ocupacaoID)
		if err != nil {
			return err
		}
		if !ocup.Ativa() {
			return ErrJaFinalizada
		}
		if ocup.Status != model.OcupacaoCalculando {
			return ErrTransicaoInvalida
		}
		ok, err := s.repo.TransicionarTx(tx, ocup.ID, []string{model.OcupacaoCalculando}, map[string]any{
			"status":             model.OcupacaoAberta,
			"calculada_em":       nil,
			"minutos_calculados": nil,
			"faixa_sugerida_id":  nil,
			"valor_sugerido":     nil,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrTransicaoInvalida
		}
		ocup.Status = model.OcupacaoAberta
		ocup.CalculadaEm = nil
		ocup.MinutosCalculados = nil
		ocup.FaixaSugeridaID = nil
		ocup.ValorSugerido = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("ocupacao_id", ocup.ID.String()).Msg("calculo de tempo livre desfeito")
	s.publicar(ctx, ocup, "quarto_ocupado")
	return ocupacaoToResponse(ocup), nil
}

func faixaToResponse(f model.FaixaPreco) dto.FaixaResponse {
	return dto.FaixaResponse{ID: f.ID.String(), Minutos: f.Minutos, Preco: f.Preco, Rotulo: f.Rotulo}
}
