package handler

import (
	"net/http"

	"barpos/internal/dto"
	"barpos/internal/service"

	"github.com/gin-gonic/gin"
)

type OcupacoesHandler struct {
	svc        service.OcupacaoService
	tempoLivre service.TempoLivreService
}

func NewOcupacoesHandler(svc service.OcupacaoService, tempoLivre service.TempoLivreService) *OcupacoesHandler {
	return &OcupacoesHandler{svc: svc, tempoLivre: tempoLivre}
}

// Ocupar godoc
// @Summary Ocupa um quarto
// @Tags ocupacoes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OcuparRequest true "Quarto, comanda, acompanhantes e modo"
// @Success 201 {object} dto.OcupacaoResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/ocupacoes [post]
func (h *OcupacoesHandler) Ocupar(c *gin.Context) {
	var req dto.OcuparRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Ocupar(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarAtivas godoc
// @Summary Quadro de quartos ocupados
// @Tags ocupacoes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.OcupacaoResponse
// @Router /v1/ocupacoes/ativas [get]
func (h *OcupacoesHandler) ListarAtivas(c *gin.Context) {
	resp, err := h.svc.ListarAtivas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter godoc
// @Summary Detalhe de uma ocupação
// @Tags ocupacoes
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da ocupação"
// @Success 200 {object} dto.OcupacaoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/ocupacoes/{id} [get]
func (h *OcupacoesHandler) Obter(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FinalizarFixa godoc
// @Summary Finaliza uma ocupação de preço fixo
// @Tags ocupacoes
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da ocupação"
// @Success 200 {object} dto.OcupacaoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ocupacoes/{id}/finalizar [post]
func (h *OcupacoesHandler) FinalizarFixa(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.FinalizarFixa(c.Request.Context(), usuarioID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary Cancela uma ocupação sem cobrança
// @Tags ocupacoes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da ocupação"
// @Param body body dto.CancelarOcupacaoRequest true "Motivo"
// @Success 200 {object} dto.OcupacaoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ocupacoes/{id}/cancelar [post]
func (h *OcupacoesHandler) Cancelar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarOcupacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), usuarioID(c), id, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Calcular godoc
// @Summary Calcula o valor de uma ocupação de tempo livre
// @Tags tempo-livre
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da ocupação"
// @Success 200 {object} dto.CalculoTempoLivreResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ocupacoes/{id}/calcular [post]
func (h *OcupacoesHandler) Calcular(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.tempoLivre.Calcular(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirmar godoc
// @Summary Confirma a cobrança de tempo livre
// @Tags tempo-livre
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da ocupação"
// @Param body body dto.ConfirmarTempoLivreRequest true "Valor final"
// @Success 200 {object} dto.OcupacaoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ocupacoes/{id}/confirmar [post]
func (h *OcupacoesHandler) Confirmar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ConfirmarTempoLivreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.tempoLivre.Confirmar(c.Request.Context(), usuarioID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelarCalculo godoc
// @Summary Desfaz o cálculo e volta a ocupação para aberta
// @Tags tempo-livre
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da ocupação"
// @Success 200 {object} dto.OcupacaoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ocupacoes/{id}/cancelar-calculo [post]
func (h *OcupacoesHandler) CancelarCalculo(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.tempoLivre.CancelarCalculo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
