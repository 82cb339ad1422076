package handler

import (
	"net/http"

	"barpos/internal/dto"
	"barpos/internal/repository"

	"github.com/gin-gonic/gin"
)

// CatalogoHandler exposes the read-only reference data the terminals need:
// the active price-tier table and the rooms.
type CatalogoHandler struct {
	faixas  repository.FaixaRepository
	quartos repository.QuartoRepository
}

func NewCatalogoHandler(faixas repository.FaixaRepository, quartos repository.QuartoRepository) *CatalogoHandler {
	return &CatalogoHandler{faixas: faixas, quartos: quartos}
}

// ListarFaixas godoc
// @Summary Tabela de faixas de preço ativa
// @Tags catalogo
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.FaixaResponse
// @Router /v1/faixas [get]
func (h *CatalogoHandler) ListarFaixas(c *gin.Context) {
	faixas, err := h.faixas.ListAtivas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.FaixaResponse, 0, len(faixas))
	for _, f := range faixas {
		out = append(out, dto.FaixaResponse{ID: f.ID.String(), Minutos: f.Minutos, Preco: f.Preco, Rotulo: f.Rotulo})
	}
	c.JSON(http.StatusOK, out)
}

// ListarQuartos godoc
// @Summary Quartos cadastrados
// @Tags catalogo
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]interface{}
// @Router /v1/quartos [get]
func (h *CatalogoHandler) ListarQuartos(c *gin.Context) {
	quartos, err := h.quartos.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, 0, len(quartos))
	for _, q := range quartos {
		out = append(out, gin.H{"id": q.ID.String(), "numero": q.Numero, "ativo": q.Ativo})
	}
	c.JSON(http.StatusOK, out)
}
