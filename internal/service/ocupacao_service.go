package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"barpos/internal/dto"
	"barpos/internal/infra"
	"barpos/internal/model"
	"barpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OcupacaoService owns the lifecycle of room occupations:
//
//	aberta → finalizada            (fixo, FinalizarFixa)
//	aberta → calculando → finalizada (tempo_livre, see TempoLivreService)
//	aberta | calculando → cancelada
type OcupacaoService interface {
	Ocupar(ctx context.Context, usuarioID uuid.UUID, req dto.OcuparRequest) (*dto.OcupacaoResponse, error)
	FinalizarFixa(ctx context.Context, usuarioID uuid.UUID, ocupacaoID uuid.UUID) (*dto.OcupacaoResponse, error)
	Cancelar(ctx context.Context, usuarioID uuid.UUID, ocupacaoID uuid.UUID, motivo string) (*dto.OcupacaoResponse, error)
	Obter(ctx context.Context, ocupacaoID uuid.UUID) (*dto.OcupacaoResponse, error)
	ListarAtivas(ctx context.Context) ([]dto.OcupacaoResponse, error)
}

type ocupacaoService struct {
	repo          repository.OcupacaoRepository
	quartos       repository.QuartoRepository
	faixas        repository.FaixaRepository
	acomp         repository.AcompanhanteRepository
	comandas      repository.ComandaRepository
	comissao      ComissaoService
	notificador   infra.Notificador
	toleranciaMin int
	now           func() time.Time
}

// NewOcupacaoService returns the concrete service; it implements both
// OcupacaoService and TempoLivreService.
func NewOcupacaoService(
	repo repository.OcupacaoRepository,
	quartos repository.QuartoRepository,
	faixas repository.FaixaRepository,
	acomp repository.AcompanhanteRepository,
	comandas repository.ComandaRepository,
	comissao ComissaoService,
	notificador infra.Notificador,
	toleranciaMin int,
) *ocupacaoService {
	if notificador == nil {
		notificador = infra.NopNotificador()
	}
	return &ocupacaoService{
		repo:          repo,
		quartos:       quartos,
		faixas:        faixas,
		acomp:         acomp,
		comandas:      comandas,
		comissao:      comissao,
		notificador:   notificador,
		toleranciaMin: toleranciaMin,
		now:           time.Now,
	}
}

// ── Ocupar ────────────────────────────────────────────────────────────────────
// The in-transaction lookup reports the common case; the partial unique index
// uq_ocupacoes_quarto_ativa decides races between terminals.

func (s *ocupacaoService) Ocupar(ctx context.Context, usuarioID uuid.UUID, req dto.OcuparRequest) (*dto.OcupacaoResponse, error) {
	quartoID, err := parseID(req.QuartoID)
	if err != nil {
		return nil, err
	}
	comandaID, err := parseID(req.ComandaID)
	if err != nil {
		return nil, err
	}
	if req.Modo != model.ModoFixo && req.Modo != model.ModoTempoLivre {
		return nil, ErrModoInvalido
	}
	vinculos, ids, err := parseAcompanhantes(req.Acompanhantes)
	if err != nil {
		return nil, err
	}

	agora := s.now()
	ocup := &model.Ocupacao{
		QuartoID:   quartoID,
		ComandaID:  comandaID,
		Modo:       req.Modo,
		Status:     model.OcupacaoAberta,
		IniciadaEm: agora,
		UsuarioID:  optUUID(usuarioID),
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		quarto, err := s.quartos.FindByIDTx(tx, quartoID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrQuartoInvalido
			}
			return err
		}
		if !quarto.Ativo {
			return ErrQuartoInvalido
		}

		comanda, err := s.comandas.FindByIDTx(tx, comandaID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrNaoEncontrado
			}
			return err
		}
		if comanda.Status != model.ComandaAberta {
			return ErrComandaNaoAberta
		}

		ativos, err := s.acomp.FindAtivosTx(tx, ids)
		if err != nil {
			return err
		}
		if len(ativos) != len(ids) {
			return ErrAcompanhanteInvalido
		}
		periodo := make(map[uuid.UUID]uuid.UUID, len(ativos))
		for _, a := range ativos {
			periodo[a.ID] = a.AtivacaoID
		}
		ocup.Acompanhantes = ocup.Acompanhantes[:0]
		for _, v := range vinculos {
			atv := periodo[v.AcompanhanteID]
			v.AtivacaoID = &atv
			ocup.Acompanhantes = append(ocup.Acompanhantes, v)
		}

		faixas, err := s.faixas.ListAtivasTx(tx)
		if err != nil {
			return err
		}
		if req.Modo == model.ModoFixo {
			if req.FaixaID == nil {
				return ErrFaixaInvalida
			}
			faixaID, err := parseID(*req.FaixaID)
			if err != nil {
				return err
			}
			faixa, ok := buscarFaixa(faixas, faixaID)
			if !ok {
				return ErrFaixaInvalida
			}
			preco := faixa.Preco
			ocup.FaixaAberturaID = &faixa.ID
			ocup.PrecoAbertura = &preco
		} else if _, err := ValidarFaixas(faixas); err != nil {
			return err
		}

		if _, err := s.repo.FindAtivaPorQuartoTx(tx, quartoID); err == nil {
			return ErrQuartoOcupado
		} else if !repository.IsNotFound(err) {
			return err
		}
		if err := s.repo.CreateTx(tx, ocup); err != nil {
			if errors.Is(err, repository.ErrConflito) {
				return ErrQuartoOcupado
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("ocupacao_id", ocup.ID.String()).
		Str("quarto_id", quartoID.String()).
		Str("modo", ocup.Modo).
		Int("acompanhantes", len(ocup.Acompanhantes)).
		Msg("quarto ocupado")
	s.publicar(ctx, ocup, "quarto_ocupado")
	return ocupacaoToResponse(ocup), nil
}

// ── FinalizarFixa ─────────────────────────────────────────────────────────────
// Fixed-price service: charges the tier agreed at open, whatever the elapsed time.

func (s *ocupacaoService) FinalizarFixa(ctx context.Context, usuarioID uuid.UUID, ocupacaoID uuid.UUID) (*dto.OcupacaoResponse, error) {
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
		if ocup.Modo != model.ModoFixo || ocup.Status != model.OcupacaoAberta || ocup.PrecoAbertura == nil {
			return ErrTransicaoInvalida
		}
		return s.cobrarTx(tx, usuarioID, ocup, model.OcupacaoAberta, *ocup.PrecoAbertura, ocup.FaixaAberturaID, map[string]any{})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("ocupacao_id", ocup.ID.String()).Str("valor", ocup.ValorCobrado.String()).Msg("ocupacao fixa finalizada")
	s.publicar(ctx, ocup, "quarto_liberado")
	return ocupacaoToResponse(ocup), nil
}

// ── Cancelar ──────────────────────────────────────────────────────────────────
// Releases the room without any charge. The reason is kept for audit.

func (s *ocupacaoService) Cancelar(ctx context.Context, usuarioID uuid.UUID, ocupacaoID uuid.UUID, motivo string) (*dto.OcupacaoResponse, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, ErrMotivoObrigatorio
	}

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
		agora := s.now()
		ok, err := s.repo.TransicionarTx(tx, ocup.ID, model.StatusOcupacaoAtiva, map[string]any{
			"status":                 model.OcupacaoCancelada,
			"cancelada_em":           agora,
			"motivo_cancelamento":    motivo,
			"usuario_finalizacao_id": optUUID(usuarioID),
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrJaFinalizada
		}
		ocup.Status = model.OcupacaoCancelada
		ocup.CanceladaEm = &agora
		ocup.MotivoCancelamento = &motivo
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("ocupacao_id", ocup.ID.String()).Str("motivo", motivo).Msg("ocupacao cancelada")
	s.publicar(ctx, ocup, "quarto_liberado")
	return ocupacaoToResponse(ocup), nil
}

// ── Leitura ───────────────────────────────────────────────────────────────────

func (s *ocupacaoService) Obter(ctx context.Context, ocupacaoID uuid.UUID) (*dto.OcupacaoResponse, error) {
	ocup, err := s.repo.FindByID(ctx, ocupacaoID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNaoEncontrado
		}
		return nil, err
	}
	return ocupacaoToResponse(ocup), nil
}

// ListarAtivas feeds the room board: every occupation still holding a room.
func (s *ocupacaoService) ListarAtivas(ctx context.Context) ([]dto.OcupacaoResponse, error) {
	ativas, err := s.repo.ListAtivas(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OcupacaoResponse, 0, len(ativas))
	for i := range ativas {
		out = append(out, *ocupacaoToResponse(&ativas[i]))
	}
	return out, nil
}

// ── Cobrança ──────────────────────────────────────────────────────────────────

// cobrarTx finalizes the occupation, posts the room charge on its tab and
// accrues the companions' commission, all inside tx: either every write
// lands or none does. campos carries extra columns for the transition.
func (s *ocupacaoService) cobrarTx(tx *gorm.DB, usuarioID uuid.UUID, ocup *model.Ocupacao, de string, valor decimal.Decimal, faixaID *uuid.UUID, campos map[string]any) error {
	if valor.IsNegative() {
		return ErrValorInvalido
	}
	agora := s.now()
	campos["status"] = model.OcupacaoFinalizada
	campos["finalizada_em"] = agora
	campos["valor_cobrado"] = valor
	campos["faixa_cobrada_id"] = faixaID
	campos["usuario_finalizacao_id"] = optUUID(usuarioID)
	ok, err := s.repo.TransicionarTx(tx, ocup.ID, []string{de}, campos)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTransicaoInvalida
	}

	comanda, err := s.comandas.FindByIDTx(tx, ocup.ComandaID)
	if err != nil {
		return err
	}
	quarto, err := s.quartos.FindByIDTx(tx, ocup.QuartoID)
	if err != nil {
		return err
	}
	item := &model.ItemComanda{
		ComandaID:     comanda.ID,
		Tipo:          model.ItemQuarto,
		Descricao:     descricaoCobranca(quarto, ocup, agora),
		Quantidade:    1,
		ValorUnitario: valor,
		Valor:         valor,
		OcupacaoID:    &ocup.ID,
		CreatedAt:     agora,
	}
	if err := s.comandas.LancarCobrancaTx(tx, item); err != nil {
		switch {
		case repository.IsNotFound(err):
			return ErrComandaNaoAberta
		case errors.Is(err, repository.ErrConflito):
			return ErrJaFinalizada
		}
		return err
	}

	participantes, err := s.participantesTx(tx, ocup)
	if err != nil {
		return err
	}
	origem := OrigemComissao{Tipo: model.OrigemOcupacao, ID: ocup.ID}
	if _, err := s.comissao.AcumularTx(tx, comanda.SessaoCaixaID, origem, valor, participantes); err != nil {
		return err
	}

	ocup.Status = model.OcupacaoFinalizada
	ocup.FinalizadaEm = &agora
	ocup.ValorCobrado = &valor
	ocup.FaixaCobradaID = faixaID
	ocup.UsuarioFinalizacaoID = optUUID(usuarioID)
	return nil
}

// participantesTx resolves each companion's percent at accrual time: the
// per-occupation override if any, else the directory default as it is now.
func (s *ocupacaoService) participantesTx(tx *gorm.DB, ocup *model.Ocupacao) ([]Participante, error) {
	ids := make([]uuid.UUID, 0, len(ocup.Acompanhantes))
	for _, v := range ocup.Acompanhantes {
		ids = append(ids, v.AcompanhanteID)
	}
	acomps, err := s.acomp.FindByIDsTx(tx, ids)
	if err != nil {
		return nil, err
	}
	padrao := make(map[uuid.UUID]decimal.Decimal, len(acomps))
	for _, a := range acomps {
		padrao[a.ID] = a.PercentualComissao
	}

	out := make([]Participante, 0, len(ocup.Acompanhantes))
	for _, v := range ocup.Acompanhantes {
		pct, ok := padrao[v.AcompanhanteID]
		if !ok {
			return nil, ErrAcompanhanteInvalido
		}
		if v.PercentualOverride != nil {
			pct = *v.PercentualOverride
		}
		out = append(out, Participante{AcompanhanteID: v.AcompanhanteID, AtivacaoID: v.AtivacaoID, Percentual: pct})
	}
	return out, nil
}

func (s *ocupacaoService) carregarTx(tx *gorm.DB, id uuid.UUID) (*model.Ocupacao, error) {
	ocup, err := s.repo.FindByIDTx(tx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNaoEncontrado
		}
		return nil, err
	}
	return ocup, nil
}

func (s *ocupacaoService) publicar(ctx context.Context, ocup *model.Ocupacao, tipo string) {
	ev := infra.Evento{Tipo: tipo, ID: ocup.QuartoID.String(), Status: ocup.Status, Em: s.now().UTC().Format(time.RFC3339)}
	if err := s.notificador.Publicar(ctx, infra.CanalQuartos, ev); err != nil {
		log.Warn().Err(err).Str("ocupacao_id", ocup.ID.String()).Msg("falha ao publicar evento do quarto")
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrIDInvalido, raw)
	}
	return id, nil
}

// parseAcompanhantes requires at least one companion, no repeats, and
// overrides within 0..100.
func parseAcompanhantes(in []dto.AcompanhanteOcupacao) ([]model.OcupacaoAcompanhante, []uuid.UUID, error) {
	if len(in) == 0 {
		return nil, nil, ErrAcompanhanteInvalido
	}
	vistos := make(map[uuid.UUID]bool, len(in))
	vinculos := make([]model.OcupacaoAcompanhante, 0, len(in))
	ids := make([]uuid.UUID, 0, len(in))
	for _, a := range in {
		id, err := uuid.Parse(a.ID)
		if err != nil || vistos[id] {
			return nil, nil, ErrAcompanhanteInvalido
		}
		if a.PercentualOverride != nil && (a.PercentualOverride.IsNegative() || a.PercentualOverride.GreaterThan(cem)) {
			return nil, nil, ErrAcompanhanteInvalido
		}
		vistos[id] = true
		ids = append(ids, id)
		vinculos = append(vinculos, model.OcupacaoAcompanhante{AcompanhanteID: id, PercentualOverride: a.PercentualOverride})
	}
	return vinculos, ids, nil
}

func buscarFaixa(faixas []model.FaixaPreco, id uuid.UUID) (model.FaixaPreco, bool) {
	for _, f := range faixas {
		if f.ID == id {
			return f, true
		}
	}
	return model.FaixaPreco{}, false
}

func descricaoCobranca(q *model.Quarto, o *model.Ocupacao, fim time.Time) string {
	if o.Modo == model.ModoFixo {
		return fmt.Sprintf("Quarto %s (fixo)", q.Numero)
	}
	return fmt.Sprintf("Quarto %s (tempo livre, %d min)", q.Numero, minutosDecorridos(o.IniciadaEm, fim))
}

func ocupacaoToResponse(o *model.Ocupacao) *dto.OcupacaoResponse {
	acomps := make([]string, 0, len(o.Acompanhantes))
	for _, a := range o.Acompanhantes {
		acomps = append(acomps, a.AcompanhanteID.String())
	}
	r := &dto.OcupacaoResponse{
		ID:                 o.ID.String(),
		QuartoID:           o.QuartoID.String(),
		ComandaID:          o.ComandaID.String(),
		Modo:               o.Modo,
		Status:             o.Status,
		Acompanhantes:      acomps,
		IniciadaEm:         o.IniciadaEm.Format(time.RFC3339),
		PrecoAbertura:      o.PrecoAbertura,
		ValorSugerido:      o.ValorSugerido,
		ValorCobrado:       o.ValorCobrado,
		ValorAjustado:      o.ValorAjustado,
		MotivoCancelamento: o.MotivoCancelamento,
	}
	r.FaixaAberturaID = optString(o.FaixaAberturaID)
	r.FaixaCobradaID = optString(o.FaixaCobradaID)
	if o.CalculadaEm != nil {
		t := o.CalculadaEm.Format(time.RFC3339)
		r.CalculadaEm = &t
	}
	if o.FinalizadaEm != nil {
		t := o.FinalizadaEm.Format(time.RFC3339)
		r.FinalizadaEm = &t
	}
	return r
}

func optString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
