package handler

import (
	"net/http"
	"strconv"

	"barpos/internal/dto"
	"barpos/internal/service"

	"github.com/gin-gonic/gin"
)

type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre a sessão de caixa
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCaixaRequest true "Saldo inicial"
// @Success 201 {object} dto.ReporteCaixaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Sangria godoc
// @Summary Registra uma sangria (retirada de dinheiro)
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SangriaRequest true "Valor e motivo"
// @Success 201 {object} dto.SangriaResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/caixa/sangrias [post]
func (h *CaixaHandler) Sangria(c *gin.Context) {
	var req dto.SangriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Sangria(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Fechar godoc
// @Summary Fecha o caixa com o valor contado
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FecharCaixaRequest true "Saldo contado"
// @Success 200 {object} dto.FechamentoCaixaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObterReporte godoc
// @Summary Relatório de uma sessão de caixa
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Success 200 {object} dto.ReporteCaixaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caixa/{id}/reporte [get]
func (h *CaixaHandler) ObterReporte(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterReporte(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetAberta godoc
// @Summary Sessão de caixa aberta
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ReporteCaixaResponse
// @Success 204
// @Router /v1/caixa/aberta [get]
func (h *CaixaHandler) GetAberta(c *gin.Context) {
	resp, err := h.svc.GetAberta(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary Histórico de sessões de caixa
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param page query int false "Página" default(1)
// @Param limit query int false "Itens por página" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /v1/caixa/historial [get]
func (h *CaixaHandler) Historial(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sessoes, total, err := h.svc.Historial(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessoes, "total": total, "page": page, "limit": limit})
}
