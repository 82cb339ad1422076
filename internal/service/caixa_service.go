package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"barpos/internal/dto"
	"barpos/internal/infra"
	"barpos/internal/model"
	"barpos/internal/repository"
	"barpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CaixaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.ReporteCaixaResponse, error)
	Sangria(ctx context.Context, usuarioID uuid.UUID, req dto.SangriaRequest) (*dto.SangriaResponse, error)
	Fechar(ctx context.Context, usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.FechamentoCaixaResponse, error)
	ObterReporte(ctx context.Context, sessaoID uuid.UUID) (*dto.ReporteCaixaResponse, error)
	GetAberta(ctx context.Context) (*dto.ReporteCaixaResponse, error)
	Historial(ctx context.Context, page, limit int) ([]dto.ReporteCaixaResponse, int64, error)

	// SessaoAbertaTx returns the open session with its row locked for the
	// rest of tx. Called by the tab service.
	SessaoAbertaTx(tx *gorm.DB) (*model.SessaoCaixa, error)
	// RegistrarVendaTx and RegistrarComissaoTx are side effects of closing a
	// tab and of commission accrual; no user action calls them directly.
	RegistrarVendaTx(tx *gorm.DB, sessaoID uuid.UUID, valor decimal.Decimal) error
	RegistrarComissaoTx(tx *gorm.DB, sessaoID uuid.UUID, valor decimal.Decimal) error
}

type caixaService struct {
	repo        repository.CaixaRepository
	comandas    repository.ComandaRepository
	notificador infra.Notificador
	dispatcher  *worker.Dispatcher
	now         func() time.Time
}

func NewCaixaService(
	repo repository.CaixaRepository,
	comandas repository.ComandaRepository,
	notificador infra.Notificador,
	dispatcher *worker.Dispatcher,
) CaixaService {
	if notificador == nil {
		notificador = infra.NopNotificador()
	}
	return &caixaService{
		repo:        repo,
		comandas:    comandas,
		notificador: notificador,
		dispatcher:  dispatcher,
		now:         time.Now,
	}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// The pre-check gives a clean error in the common case; the partial unique
// index uq_sessoes_caixa_aberta settles concurrent opens.

func (s *caixaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.ReporteCaixaResponse, error) {
	if req.SaldoInicial.IsNegative() {
		return nil, ErrValorInvalido
	}
	sessao := &model.SessaoCaixa{
		SaldoInicial:      req.SaldoInicial,
		TotalVendas:       decimal.Zero,
		TotalComissoes:    decimal.Zero,
		TotalSangrias:     decimal.Zero,
		Status:            model.CaixaAberta,
		UsuarioAberturaID: optUUID(usuarioID),
		AbertaEm:          s.now(),
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.repo.FindSessaoAbertaTx(tx); err == nil {
			return ErrSessaoJaAberta
		} else if !repository.IsNotFound(err) {
			return err
		}
		if err := s.repo.CreateSessaoTx(tx, sessao); err != nil {
			if errors.Is(err, repository.ErrConflito) {
				return ErrSessaoJaAberta
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("sessao_id", sessao.ID.String()).Str("saldo_inicial", sessao.SaldoInicial.String()).Msg("caixa aberto")
	s.publicar(ctx, sessao.ID, "caixa_aberto", model.CaixaAberta)
	return s.buildReporte(sessao, nil), nil
}

// ── Sangria ───────────────────────────────────────────────────────────────────
// Append-only; lowers the expected drawer balance, never TotalVendas.

func (s *caixaService) Sangria(ctx context.Context, usuarioID uuid.UUID, req dto.SangriaRequest) (*dto.SangriaResponse, error) {
	if !req.Valor.IsPositive() {
		return nil, ErrValorInvalido
	}
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		return nil, ErrMotivoObrigatorio
	}

	var sangria model.Sangria
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sessao, err := s.SessaoAbertaTx(tx)
		if err != nil {
			return err
		}
		sangria = model.Sangria{
			SessaoCaixaID: sessao.ID,
			Valor:         req.Valor,
			Motivo:        motivo,
			UsuarioID:     optUUID(usuarioID),
			CreatedAt:     s.now(),
		}
		if err := s.repo.CreateSangriaTx(tx, &sangria); err != nil {
			return err
		}
		return s.incrementar(tx, sessao.ID, repository.ColunaTotalSangrias, req.Valor)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("sessao_id", sangria.SessaoCaixaID.String()).Str("valor", sangria.Valor.String()).Msg("sangria registrada")
	s.publicar(ctx, sangria.SessaoCaixaID, "sangria", model.CaixaAberta)
	return sangriaToResponse(&sangria), nil
}

// ── Fechar ────────────────────────────────────────────────────────────────────
// Refused while any tab is still open. The session row is locked before the
// tabs are counted, so a tab opened concurrently either lands first (and is
// counted) or finds the register already closed.

func (s *caixaService) Fechar(ctx context.Context, usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.FechamentoCaixaResponse, error) {
	if req.SaldoContado.IsNegative() {
		return nil, ErrValorInvalido
	}

	var sessao *model.SessaoCaixa
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sessao, err = s.SessaoAbertaTx(tx)
		if err != nil {
			return err
		}
		abertas, err := s.comandas.CountAbertasTx(tx)
		if err != nil {
			return err
		}
		if abertas > 0 {
			return erroComandasAbertas(abertas)
		}

		esperado := saldoEsperado(sessao)
		contado := req.SaldoContado
		diferenca := contado.Sub(esperado)
		var pct decimal.Decimal
		if !esperado.IsZero() {
			pct = diferenca.Div(esperado).Mul(cem).Round(2)
		}
		classificacao := classificarDiferenca(pct)
		agora := s.now()

		sessao.SaldoEsperado = &esperado
		sessao.SaldoContado = &contado
		sessao.Diferenca = &diferenca
		sessao.DiferencaPct = &pct
		sessao.Classificacao = &classificacao
		sessao.Observacoes = req.Observacoes
		sessao.UsuarioFechamentoID = optUUID(usuarioID)
		sessao.FechadaEm = &agora
		if err := s.repo.FecharSessaoTx(tx, sessao); err != nil {
			if repository.IsNotFound(err) {
				return ErrSemSessaoAberta
			}
			return err
		}
		sessao.Status = model.CaixaFechada
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("sessao_id", sessao.ID.String()).
		Str("esperado", sessao.SaldoEsperado.String()).
		Str("contado", sessao.SaldoContado.String()).
		Str("diferenca", sessao.Diferenca.String()).
		Str("classificacao", *sessao.Classificacao).
		Msg("caixa fechado")
	s.publicar(ctx, sessao.ID, "caixa_fechado", model.CaixaFechada)

	// Closing slip (PDF + e-mail) is best-effort.
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueFechamento(ctx, sessao.ID); err != nil {
			log.Warn().Err(err).Str("sessao_id", sessao.ID.String()).Msg("falha ao agendar comprovante de fechamento")
		}
	}

	return &dto.FechamentoCaixaResponse{
		SessaoCaixaID: sessao.ID.String(),
		SaldoInicial:  sessao.SaldoInicial,
		TotalVendas:   sessao.TotalVendas,
		TotalSangrias: sessao.TotalSangrias,
		SaldoEsperado: *sessao.SaldoEsperado,
		SaldoContado:  *sessao.SaldoContado,
		Diferenca: dto.DiferencaResponse{
			Valor:         *sessao.Diferenca,
			Percentual:    *sessao.DiferencaPct,
			Classificacao: *sessao.Classificacao,
		},
		Status:    sessao.Status,
		FechadaEm: sessao.FechadaEm.Format(time.RFC3339),
	}, nil
}

// ── Leitura ───────────────────────────────────────────────────────────────────

func (s *caixaService) ObterReporte(ctx context.Context, sessaoID uuid.UUID) (*dto.ReporteCaixaResponse, error) {
	sessao, err := s.repo.FindSessaoByID(ctx, sessaoID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNaoEncontrado
		}
		return nil, err
	}
	return s.buildReporte(sessao, sessao.Sangrias), nil
}

// GetAberta returns the open session, or nil when the register is closed.
func (s *caixaService) GetAberta(ctx context.Context) (*dto.ReporteCaixaResponse, error) {
	aberta, err := s.repo.FindSessaoAberta(ctx)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return s.ObterReporte(ctx, aberta.ID)
}

func (s *caixaService) Historial(ctx context.Context, page, limit int) ([]dto.ReporteCaixaResponse, int64, error) {
	sessoes, total, err := s.repo.ListSessoes(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ReporteCaixaResponse, 0, len(sessoes))
	for i := range sessoes {
		out = append(out, *s.buildReporte(&sessoes[i], nil))
	}
	return out, total, nil
}

// ── Ledger internals ──────────────────────────────────────────────────────────

func (s *caixaService) SessaoAbertaTx(tx *gorm.DB) (*model.SessaoCaixa, error) {
	aberta, err := s.repo.FindSessaoAbertaTx(tx)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSemSessaoAberta
		}
		return nil, err
	}
	if err := s.repo.TravarSessaoTx(tx, aberta.ID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSemSessaoAberta
		}
		return nil, err
	}
	// Re-read under the lock so totals reflect every committed increment.
	return s.repo.FindSessaoByIDTx(tx, aberta.ID)
}

func (s *caixaService) RegistrarVendaTx(tx *gorm.DB, sessaoID uuid.UUID, valor decimal.Decimal) error {
	return s.incrementar(tx, sessaoID, repository.ColunaTotalVendas, valor)
}

func (s *caixaService) RegistrarComissaoTx(tx *gorm.DB, sessaoID uuid.UUID, valor decimal.Decimal) error {
	return s.incrementar(tx, sessaoID, repository.ColunaTotalComissoes, valor)
}

func (s *caixaService) incrementar(tx *gorm.DB, sessaoID uuid.UUID, coluna string, valor decimal.Decimal) error {
	if valor.IsNegative() {
		return ErrValorInvalido
	}
	if err := s.repo.IncrementarTotalTx(tx, sessaoID, coluna, valor); err != nil {
		if repository.IsNotFound(err) {
			return ErrSemSessaoAberta
		}
		return err
	}
	return nil
}

func (s *caixaService) publicar(ctx context.Context, sessaoID uuid.UUID, tipo, status string) {
	ev := infra.Evento{Tipo: tipo, ID: sessaoID.String(), Status: status, Em: s.now().UTC().Format(time.RFC3339)}
	if err := s.notificador.Publicar(ctx, infra.CanalCaixa, ev); err != nil {
		log.Warn().Err(err).Str("sessao_id", ev.ID).Msg("falha ao publicar evento do caixa")
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func saldoEsperado(s *model.SessaoCaixa) decimal.Decimal {
	return s.SaldoInicial.Add(s.TotalVendas).Sub(s.TotalSangrias)
}

// classificarDiferenca returns "normal" | "advertencia" | "critico"
// normal: |dif| <= 1%, advertencia: <= 5%, critico: > 5%
func classificarDiferenca(pct decimal.Decimal) string {
	abs := pct.Abs()
	switch {
	case abs.LessThanOrEqual(decimal.NewFromInt(1)):
		return "normal"
	case abs.LessThanOrEqual(decimal.NewFromInt(5)):
		return "advertencia"
	default:
		return "critico"
	}
}

func optUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func (s *caixaService) buildReporte(sessao *model.SessaoCaixa, sangrias []model.Sangria) *dto.ReporteCaixaResponse {
	r := &dto.ReporteCaixaResponse{
		SessaoCaixaID:  sessao.ID.String(),
		SaldoInicial:   sessao.SaldoInicial,
		TotalVendas:    sessao.TotalVendas,
		TotalComissoes: sessao.TotalComissoes,
		TotalSangrias:  sessao.TotalSangrias,
		LucroLiquido:   sessao.TotalVendas.Sub(sessao.TotalComissoes),
		SaldoEsperado:  saldoEsperado(sessao),
		SaldoContado:   sessao.SaldoContado,
		Sangrias:       make([]dto.SangriaResponse, 0, len(sangrias)),
		Status:         sessao.Status,
		Observacoes:    sessao.Observacoes,
		AbertaEm:       sessao.AbertaEm.Format(time.RFC3339),
	}
	if sessao.Diferenca != nil && sessao.DiferencaPct != nil && sessao.Classificacao != nil {
		r.Diferenca = &dto.DiferencaResponse{
			Valor:         *sessao.Diferenca,
			Percentual:    *sessao.DiferencaPct,
			Classificacao: *sessao.Classificacao,
		}
	}
	if sessao.FechadaEm != nil {
		t := sessao.FechadaEm.Format(time.RFC3339)
		r.FechadaEm = &t
	}
	for i := range sangrias {
		r.Sangrias = append(r.Sangrias, *sangriaToResponse(&sangrias[i]))
	}
	return r
}

func sangriaToResponse(s *model.Sangria) *dto.SangriaResponse {
	return &dto.SangriaResponse{
		ID:            s.ID.String(),
		SessaoCaixaID: s.SessaoCaixaID.String(),
		Valor:         s.Valor,
		Motivo:        s.Motivo,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
}
