package handler

import (
	"net/http"
	"strconv"

	"barpos/internal/apierror"
	"barpos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var filasPorNome = map[string]string{
	"fechamento": worker.QueueFechamento,
	"email":      worker.QueueEmail,
}

// FilasHandler lets a manager inspect jobs parked in the dead letter queues.
type FilasHandler struct {
	rdb *redis.Client
}

func NewFilasHandler(rdb *redis.Client) *FilasHandler {
	return &FilasHandler{rdb: rdb}
}

// ListarDLQ godoc
// @Summary Jobs com falha definitiva de uma fila
// @Tags filas
// @Produce json
// @Security BearerAuth
// @Param fila path string true "fechamento | email"
// @Param limit query int false "Máximo de itens" default(50)
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /v1/filas/{fila}/dlq [get]
func (h *FilasHandler) ListarDLQ(c *gin.Context) {
	fila, ok := filasPorNome[c.Param("fila")]
	if !ok {
		c.JSON(http.StatusNotFound, apierror.WithCode("FILA_INEXISTENTE", "fila inexistente"))
		return
	}
	if h.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, apierror.WithCode("REDIS_DESATIVADO", "filas de processamento desativadas"))
		return
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	entradas, err := worker.ListDLQ(c.Request.Context(), h.rdb, fila, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fila": fila, "data": entradas})
}
