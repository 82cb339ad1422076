package handler

import (
	"net/http"

	"barpos/internal/apierror"
	"barpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ComissoesHandler struct{ svc service.ComissaoService }

func NewComissoesHandler(svc service.ComissaoService) *ComissoesHandler {
	return &ComissoesHandler{svc: svc}
}

// Resumo godoc
// @Summary Comissões acumuladas de uma acompanhante
// @Tags comissoes
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da acompanhante"
// @Param ativacao_id query string false "Restringe a um período de ativação"
// @Success 200 {object} dto.ResumoComissaoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/acompanhantes/{id}/comissoes [get]
func (h *ComissoesHandler) Resumo(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var ativacaoID *uuid.UUID
	if raw := c.Query("ativacao_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("ativacao_id inválido"))
			return
		}
		ativacaoID = &parsed
	}
	resp, err := h.svc.ResumoAcompanhante(c.Request.Context(), id, ativacaoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
