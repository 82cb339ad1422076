package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barpos/internal/dto"
	"barpos/internal/model"
	"barpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ComandaService manages customer tabs. A tab belongs to the register
// session open when it was created; its total reaches the ledger only when
// the tab is closed.
type ComandaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID) (*dto.ComandaResponse, error)
	LancarProduto(ctx context.Context, comandaID uuid.UUID, req dto.LancarProdutoRequest) (*dto.ComandaResponse, error)
	Fechar(ctx context.Context, comandaID uuid.UUID) (*dto.ComandaResponse, error)
	Cancelar(ctx context.Context, comandaID uuid.UUID) (*dto.ComandaResponse, error)
	Obter(ctx context.Context, comandaID uuid.UUID) (*dto.ComandaResponse, error)
	ListarAbertas(ctx context.Context) ([]dto.ComandaResponse, error)
}

type comandaService struct {
	repo      repository.ComandaRepository
	ocupacoes repository.OcupacaoRepository
	acomp     repository.AcompanhanteRepository
	caixa     CaixaService
	comissao  ComissaoService
	now       func() time.Time
}

func NewComandaService(
	repo repository.ComandaRepository,
	ocupacoes repository.OcupacaoRepository,
	acomp repository.AcompanhanteRepository,
	caixa CaixaService,
	comissao ComissaoService,
) ComandaService {
	return &comandaService{
		repo:      repo,
		ocupacoes: ocupacoes,
		acomp:     acomp,
		caixa:     caixa,
		comissao:  comissao,
		now:       time.Now,
	}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// Locks the open session row, so a concurrent close either sees this tab or
// runs first and makes this call fail with ErrSemSessaoAberta.

func (s *comandaService) Abrir(ctx context.Context, usuarioID uuid.UUID) (*dto.ComandaResponse, error) {
	var comanda *model.Comanda
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sessao, err := s.caixa.SessaoAbertaTx(tx)
		if err != nil {
			return err
		}
		numero, err := s.repo.NextNumeroTx(tx, sessao.ID)
		if err != nil {
			return err
		}
		comanda = &model.Comanda{
			Numero:        numero,
			Status:        model.ComandaAberta,
			Total:         decimal.Zero,
			SessaoCaixaID: sessao.ID,
			UsuarioID:     optUUID(usuarioID),
			AbertaEm:      s.now(),
		}
		return s.repo.CreateTx(tx, comanda)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("comanda_id", comanda.ID.String()).Int("numero", comanda.Numero).Msg("comanda aberta")
	return comandaToResponse(comanda), nil
}

// ── LancarProduto ─────────────────────────────────────────────────────────────
// Products may name companions who share a commission on the line value,
// split the same way as a room charge.

func (s *comandaService) LancarProduto(ctx context.Context, comandaID uuid.UUID, req dto.LancarProdutoRequest) (*dto.ComandaResponse, error) {
	descricao := strings.TrimSpace(req.Descricao)
	if descricao == "" || req.Quantidade < 1 || req.ValorUnitario.IsNegative() {
		return nil, ErrValorInvalido
	}
	ids := make([]uuid.UUID, 0, len(req.AcompanhanteIDs))
	vistos := make(map[uuid.UUID]bool, len(req.AcompanhanteIDs))
	for _, raw := range req.AcompanhanteIDs {
		id, err := uuid.Parse(raw)
		if err != nil || vistos[id] {
			return nil, ErrAcompanhanteInvalido
		}
		vistos[id] = true
		ids = append(ids, id)
	}

	unitario := req.ValorUnitario.Round(2)
	valor := unitario.Mul(decimal.NewFromInt(int64(req.Quantidade)))

	var comanda *model.Comanda
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		atual, err := s.repo.FindByIDTx(tx, comandaID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrNaoEncontrado
			}
			return err
		}
		if atual.Status != model.ComandaAberta {
			return ErrComandaNaoAberta
		}
		if _, err := s.caixa.SessaoAbertaTx(tx); err != nil {
			return err
		}

		var participantes []Participante
		if len(ids) > 0 {
			ativos, err := s.acomp.FindAtivosTx(tx, ids)
			if err != nil {
				return err
			}
			if len(ativos) != len(ids) {
				return ErrAcompanhanteInvalido
			}
			porID := make(map[uuid.UUID]repository.AcompanhanteAtivo, len(ativos))
			for _, a := range ativos {
				porID[a.ID] = a
			}
			for _, id := range ids {
				a := porID[id]
				atv := a.AtivacaoID
				participantes = append(participantes, Participante{AcompanhanteID: id, AtivacaoID: &atv, Percentual: a.PercentualComissao})
			}
		}

		item := &model.ItemComanda{
			ComandaID:     atual.ID,
			Tipo:          model.ItemProduto,
			Descricao:     descricao,
			Quantidade:    req.Quantidade,
			ValorUnitario: unitario,
			Valor:         valor,
			CreatedAt:     s.now(),
		}
		if err := s.repo.LancarCobrancaTx(tx, item); err != nil {
			if repository.IsNotFound(err) {
				return ErrComandaNaoAberta
			}
			return err
		}
		if len(participantes) > 0 {
			origem := OrigemComissao{Tipo: model.OrigemItemComissionado, ID: item.ID}
			if _, err := s.comissao.AcumularTx(tx, atual.SessaoCaixaID, origem, valor, participantes); err != nil {
				return err
			}
		}
		comanda, err = s.repo.FindByIDTx(tx, atual.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("comanda_id", comanda.ID.String()).
		Str("valor", valor.String()).
		Int("acompanhantes", len(ids)).
		Msg("produto lancado")
	return comandaToResponse(comanda), nil
}

// ── Fechar ────────────────────────────────────────────────────────────────────

func (s *comandaService) Fechar(ctx context.Context, comandaID uuid.UUID) (*dto.ComandaResponse, error) {
	var comanda *model.Comanda
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		comanda, err = s.carregarAbertaTx(tx, comandaID)
		if err != nil {
			return err
		}
		agora := s.now()
		ok, err := s.repo.TransicionarTx(tx, comanda.ID, model.ComandaFechada, agora)
		if err != nil {
			return err
		}
		if !ok {
			return ErrComandaNaoAberta
		}
		if err := s.caixa.RegistrarVendaTx(tx, comanda.SessaoCaixaID, comanda.Total); err != nil {
			return err
		}
		comanda.Status = model.ComandaFechada
		comanda.FechadaEm = &agora
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("comanda_id", comanda.ID.String()).Str("total", comanda.Total.String()).Msg("comanda fechada")
	return comandaToResponse(comanda), nil
}

// ── Cancelar ──────────────────────────────────────────────────────────────────
// Only an empty tab can be cancelled; posted charges are never reversed.

func (s *comandaService) Cancelar(ctx context.Context, comandaID uuid.UUID) (*dto.ComandaResponse, error) {
	var comanda *model.Comanda
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		comanda, err = s.carregarAbertaTx(tx, comandaID)
		if err != nil {
			return err
		}
		n, err := s.repo.CountItensTx(tx, comanda.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrComandaComLancamentos
		}
		agora := s.now()
		ok, err := s.repo.TransicionarTx(tx, comanda.ID, model.ComandaCancelada, agora)
		if err != nil {
			return err
		}
		if !ok {
			return ErrComandaNaoAberta
		}
		comanda.Status = model.ComandaCancelada
		comanda.FechadaEm = &agora
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("comanda_id", comanda.ID.String()).Msg("comanda cancelada")
	return comandaToResponse(comanda), nil
}

// ── Leitura ───────────────────────────────────────────────────────────────────

func (s *comandaService) Obter(ctx context.Context, comandaID uuid.UUID) (*dto.ComandaResponse, error) {
	c, err := s.repo.FindByID(ctx, comandaID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNaoEncontrado
		}
		return nil, err
	}
	return comandaToResponse(c), nil
}

func (s *comandaService) ListarAbertas(ctx context.Context) ([]dto.ComandaResponse, error) {
	abertas, err := s.repo.ListAbertas(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ComandaResponse, 0, len(abertas))
	for i := range abertas {
		out = append(out, *comandaToResponse(&abertas[i]))
	}
	return out, nil
}

// carregarAbertaTx loads an open tab with no room occupation still running.
func (s *comandaService) carregarAbertaTx(tx *gorm.DB, comandaID uuid.UUID) (*model.Comanda, error) {
	c, err := s.repo.FindByIDTx(tx, comandaID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNaoEncontrado
		}
		return nil, err
	}
	if c.Status != model.ComandaAberta {
		return nil, ErrComandaNaoAberta
	}
	n, err := s.ocupacoes.CountAtivasPorComandaTx(tx, c.ID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("%w (%d)", ErrComandaComOcupacaoAtiva, n)
	}
	return c, nil
}

func comandaToResponse(c *model.Comanda) *dto.ComandaResponse {
	r := &dto.ComandaResponse{
		ID:       c.ID.String(),
		Numero:   c.Numero,
		Status:   c.Status,
		Total:    c.Total,
		Itens:    make([]dto.ItemComandaResponse, 0, len(c.Itens)),
		AbertaEm: c.AbertaEm.Format(time.RFC3339),
	}
	if c.FechadaEm != nil {
		t := c.FechadaEm.Format(time.RFC3339)
		r.FechadaEm = &t
	}
	for _, it := range c.Itens {
		r.Itens = append(r.Itens, dto.ItemComandaResponse{
			ID:            it.ID.String(),
			Tipo:          it.Tipo,
			Descricao:     it.Descricao,
			Quantidade:    it.Quantidade,
			ValorUnitario: it.ValorUnitario,
			Valor:         it.Valor,
			OcupacaoID:    optString(it.OcupacaoID),
		})
	}
	return r
}
