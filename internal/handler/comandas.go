package handler

import (
	"net/http"

	"barpos/internal/dto"
	"barpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ComandasHandler struct{ svc service.ComandaService }

func NewComandasHandler(svc service.ComandaService) *ComandasHandler {
	return &ComandasHandler{svc: svc}
}

// Abrir godoc
// @Summary Abre uma comanda no caixa aberto
// @Tags comandas
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.ComandaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/comandas [post]
func (h *ComandasHandler) Abrir(c *gin.Context) {
	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarAbertas godoc
// @Summary Comandas abertas
// @Tags comandas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ComandaResponse
// @Router /v1/comandas [get]
func (h *ComandasHandler) ListarAbertas(c *gin.Context) {
	resp, err := h.svc.ListarAbertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter godoc
// @Summary Detalhe da comanda com seus lançamentos
// @Tags comandas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da comanda"
// @Success 200 {object} dto.ComandaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/comandas/{id} [get]
func (h *ComandasHandler) Obter(c *gin.Context) {
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

// LancarProduto godoc
// @Summary Lança um produto na comanda
// @Tags comandas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da comanda"
// @Param body body dto.LancarProdutoRequest true "Produto"
// @Success 201 {object} dto.ComandaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/comandas/{id}/itens [post]
func (h *ComandasHandler) LancarProduto(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.LancarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.LancarProduto(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Fechar godoc
// @Summary Fecha a comanda e registra a venda no caixa
// @Tags comandas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da comanda"
// @Success 200 {object} dto.ComandaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/comandas/{id}/fechar [post]
func (h *ComandasHandler) Fechar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary Cancela uma comanda sem lançamentos
// @Tags comandas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da comanda"
// @Success 200 {object} dto.ComandaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/comandas/{id}/cancelar [post]
func (h *ComandasHandler) Cancelar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
