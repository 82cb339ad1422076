package handler

import (
	"errors"
	"net/http"
	"reflect"

	"barpos/internal/apierror"
	"barpos/internal/middleware"
	"barpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramUUID parses the :name path parameter, writing a 400 when malformed.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(service.ErrIDInvalido.Codigo, "ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// usuarioID is the acting user, taken from the JWT.
func usuarioID(c *gin.Context) uuid.UUID {
	return middleware.GetClaims(c).UsuarioID()
}

var statusPorCodigo = map[string]int{
	service.ErrQuartoOcupado.Codigo:           http.StatusConflict,
	service.ErrTransicaoInvalida.Codigo:       http.StatusConflict,
	service.ErrJaFinalizada.Codigo:            http.StatusConflict,
	service.ErrComandasAbertas.Codigo:         http.StatusConflict,
	service.ErrSessaoJaAberta.Codigo:          http.StatusConflict,
	service.ErrSemSessaoAberta.Codigo:         http.StatusConflict,
	service.ErrComandaNaoAberta.Codigo:        http.StatusConflict,
	service.ErrComandaComOcupacaoAtiva.Codigo: http.StatusConflict,
	service.ErrComandaComLancamentos.Codigo:   http.StatusConflict,
	service.ErrNaoEncontrado.Codigo:           http.StatusNotFound,
	service.ErrPersistencia.Codigo:            http.StatusServiceUnavailable,
	service.ErrIDInvalido.Codigo:              http.StatusBadRequest,
}

// respondError writes the HTTP form of a service error. Business errors keep
// their code; 4xx responses carry the full message (e.g. how many tabs block
// a close), 5xx responses only the fixed one. Anything else is logged and
// reported as a 500.
func respondError(c *gin.Context, err error) {
	e, ok := service.IsErroNegocio(err)
	if !ok {
		_ = c.Error(err)
		return
	}
	status, found := statusPorCodigo[e.Codigo]
	if !found {
		status = http.StatusUnprocessableEntity
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("code", e.Codigo).
			Msg("persistence failure")
		c.JSON(status, apierror.WithCode(e.Codigo, e.Mensagem))
		return
	}
	c.JSON(status, apierror.WithCode(e.Codigo, err.Error()))
}
