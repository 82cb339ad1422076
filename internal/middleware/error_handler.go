package middleware

import (
	"net/http"
	"time"

	"barpos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Codes for failures that never reach a service, in the same envelope the
// handlers use for business errors.
const (
	CodigoErroInterno    = "ERRO_INTERNO"
	CodigoRotaInexiste   = "ROTA_INEXISTENTE"
	CodigoMetodoInvalido = "METODO_NAO_PERMITIDO"
)

const msgErroInterno = "Erro interno do servidor"

// ErrorHandler turns errors a handler pushed with c.Error into a 500 with
// code ERRO_INTERNO. Clients never see stack traces or driver errors.
// A handler that already wrote its own response keeps it.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("usuario_id", GetClaims(c).UsuarioID().String()).
			Err(err.Err).
			Msg("unhandled error")

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.WithCode(CodigoErroInterno, msgErroInterno))
	}
}

// Recovery converts a panic into the same 500 envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("route", c.FullPath()).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.WithCode(CodigoErroInterno, msgErroInterno))
			}
		}()
		c.Next()
	}
}

// RotaInexistente answers unknown paths; MetodoNaoPermitido answers known
// paths called with the wrong verb.
func RotaInexistente(c *gin.Context) {
	c.JSON(http.StatusNotFound, apierror.WithCode(CodigoRotaInexiste, "rota inexistente"))
}

func MetodoNaoPermitido(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, apierror.WithCode(CodigoMetodoInvalido, "método não permitido"))
}

// Logger writes one line per request. 5xx log at error level, 4xx at warn.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev.Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
