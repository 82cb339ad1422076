package router

import (
	"barpos/internal/config"
	"barpos/internal/handler"
	"barpos/internal/infra"
	"barpos/internal/middleware"
	"barpos/internal/repository"
	"barpos/internal/service"
	"barpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the wired service layer, shared by the HTTP router and the
// worker pool (the closing-slip worker reads session reports).
type Services struct {
	Caixa      service.CaixaService
	Comandas   service.ComandaService
	Ocupacoes  service.OcupacaoService
	TempoLivre service.TempoLivreService
	Comissoes  service.ComissaoService

	Faixas  repository.FaixaRepository
	Quartos repository.QuartoRepository
}

// NewServices builds repositories and services.
// Dependency graph: Service ← Repository ← DB; notifications and jobs go to Redis.
// dispatcher may be nil when Redis is not configured.
func NewServices(cfg *config.Config, db *gorm.DB, notificador infra.Notificador, dispatcher *worker.Dispatcher) *Services {
	// ── Repositories ─────────────────────────────────────────────────────────
	caixaRepo := repository.NewCaixaRepository(db)
	comandaRepo := repository.NewComandaRepository(db)
	ocupacaoRepo := repository.NewOcupacaoRepository(db)
	quartoRepo := repository.NewQuartoRepository(db)
	faixaRepo := repository.NewFaixaRepository(db)
	acompRepo := repository.NewAcompanhanteRepository(db)
	comissaoRepo := repository.NewComissaoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	caixaSvc := service.NewCaixaService(caixaRepo, comandaRepo, notificador, dispatcher)
	comissaoSvc := service.NewComissaoService(comissaoRepo, acompRepo, caixaSvc)
	comandaSvc := service.NewComandaService(comandaRepo, ocupacaoRepo, acompRepo, caixaSvc, comissaoSvc)
	ocupacaoSvc := service.NewOcupacaoService(ocupacaoRepo, quartoRepo, faixaRepo, acompRepo, comandaRepo, comissaoSvc, notificador, cfg.ToleranciaMinutos)

	return &Services{
		Caixa:      caixaSvc,
		Comandas:   comandaSvc,
		Ocupacoes:  ocupacaoSvc,
		TempoLivre: ocupacaoSvc,
		Comissoes:  comissaoSvc,
		Faixas:     faixaRepo,
		Quartos:    quartoRepo,
	}
}

// New returns a configured Gin engine. rdb and smtpCB may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, svcs *Services, smtpCB *infra.CircuitBreaker, limiter *middleware.RateLimiter) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(middleware.RotaInexistente)
	r.NoMethod(middleware.MetodoNaoPermitido)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origins()))
	r.Use(middleware.ErrorHandler())
	if limiter != nil {
		r.Use(limiter.Middleware())
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	caixaH := handler.NewCaixaHandler(svcs.Caixa)
	comandasH := handler.NewComandasHandler(svcs.Comandas)
	ocupacoesH := handler.NewOcupacoesHandler(svcs.Ocupacoes, svcs.TempoLivre)
	comissoesH := handler.NewComissoesHandler(svcs.Comissoes)
	catalogoH := handler.NewCatalogoHandler(svcs.Faixas, svcs.Quartos)
	filasH := handler.NewFilasHandler(rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	// Protected routes
	staff := middleware.RequireRole(middleware.RolAtendente, middleware.RolCaixa, middleware.RolGerente)
	caixaOuGerente := middleware.RequireRole(middleware.RolCaixa, middleware.RolGerente)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.GET("/faixas", staff, catalogoH.ListarFaixas)
		v1.GET("/quartos", staff, catalogoH.ListarQuartos)

		ocup := v1.Group("/ocupacoes", staff)
		{
			ocup.POST("", ocupacoesH.Ocupar)
			ocup.GET("/ativas", ocupacoesH.ListarAtivas)
			ocup.GET("/:id", ocupacoesH.Obter)
			ocup.POST("/:id/finalizar", ocupacoesH.FinalizarFixa)
			ocup.POST("/:id/cancelar", ocupacoesH.Cancelar)
			ocup.POST("/:id/calcular", ocupacoesH.Calcular)
			ocup.POST("/:id/confirmar", ocupacoesH.Confirmar)
			ocup.POST("/:id/cancelar-calculo", ocupacoesH.CancelarCalculo)
		}

		comandas := v1.Group("/comandas", staff)
		{
			comandas.POST("", comandasH.Abrir)
			comandas.GET("", comandasH.ListarAbertas)
			comandas.GET("/:id", comandasH.Obter)
			comandas.POST("/:id/itens", comandasH.LancarProduto)
			comandas.POST("/:id/fechar", caixaOuGerente, comandasH.Fechar)
			comandas.POST("/:id/cancelar", caixaOuGerente, comandasH.Cancelar)
		}

		caixa := v1.Group("/caixa")
		{
			caixa.GET("/aberta", staff, caixaH.GetAberta)
			caixa.POST("/abrir", caixaOuGerente, caixaH.Abrir)
			caixa.POST("/sangrias", caixaOuGerente, caixaH.Sangria)
			caixa.POST("/fechar", caixaOuGerente, caixaH.Fechar)
			caixa.GET("/historial", middleware.RequireRole(middleware.RolGerente), caixaH.Historial)
			caixa.GET("/:id/reporte", caixaOuGerente, caixaH.ObterReporte)
		}

		v1.GET("/acompanhantes/:id/comissoes", caixaOuGerente, comissoesH.Resumo)
		v1.GET("/filas/:fila/dlq", middleware.RequireRole(middleware.RolGerente), filasH.ListarDLQ)
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
