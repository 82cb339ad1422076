package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signed(t *testing.T, secret string, claims JWTClaims, method jwt.SigningMethod) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func TestJWTAuthAndRoles(t *testing.T) {
	const secret = "segredo"
	r := gin.New()
	r.GET("/gerencia", JWTAuth(secret), RequireRole(RolGerente), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).UsuarioID().String())
	})

	uid := uuid.New()
	valido := func(rol string, exp time.Time) JWTClaims {
		return JWTClaims{UserID: uid.String(), Username: "ze", Rol: rol,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}}
	}

	casos := []struct {
		nome   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signed(t, "outro", valido(RolGerente, time.Now().Add(time.Hour)), jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, secret, valido(RolGerente, time.Now().Add(-time.Minute)), jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"wrong role", "Bearer " + signed(t, secret, valido(RolAtendente, time.Now().Add(time.Hour)), jwt.SigningMethodHS256), http.StatusForbidden},
		{"ok", "Bearer " + signed(t, secret, valido(RolGerente, time.Now().Add(time.Hour)), jwt.SigningMethodHS256), http.StatusOK},
	}
	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/gerencia", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := serve(r, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, uid.String(), w.Body.String())
			}
		})
	}
}

func TestUsuarioIDMalformed(t *testing.T) {
	var nilClaims *JWTClaims
	assert.Equal(t, uuid.Nil, nilClaims.UsuarioID())
	assert.Equal(t, uuid.Nil, (&JWTClaims{UserID: "x"}).UsuarioID())
}

// ── Request ID ───────────────────────────────────────────────────────────────

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "terminal-7-0001")
	w := serve(r, req)
	assert.Equal(t, "terminal-7-0001", w.Body.String())
	assert.Equal(t, "terminal-7-0001", w.Header().Get(RequestIDHeader))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

// ── Rate limiter ─────────────────────────────────────────────────────────────

func TestRateLimiter(t *testing.T) {
	agora := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2, time.Second)
	l.now = func() time.Time { return agora }

	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func() *httptest.ResponseRecorder { return serve(r, httptest.NewRequest(http.MethodGet, "/", nil)) }
	assert.Equal(t, http.StatusOK, get().Code)
	assert.Equal(t, http.StatusOK, get().Code)
	w := get()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	agora = agora.Add(2 * time.Second)
	assert.Equal(t, http.StatusOK, get().Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	l := NewRateLimiter(0, time.Second)
	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

// ── Error handling ───────────────────────────────────────────────────────────

func TestErrorHandlerHidesInternals(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.GET("/erro", func(c *gin.Context) { _ = c.Error(assert.AnError) })
	r.GET("/panico", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/erro", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	assert.Contains(t, w.Body.String(), `"code":"ERRO_INTERNO"`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/panico", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
	assert.Contains(t, w.Body.String(), `"code":"ERRO_INTERNO"`)
}

func TestErrorHandlerKeepsWrittenResponse(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/conflito", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.JSON(http.StatusConflict, gin.H{"code": "QUARTO_OCUPADO"})
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/conflito", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"code":"QUARTO_OCUPADO"}`, w.Body.String())
}

func TestRotaInexistenteAndMetodo(t *testing.T) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(RotaInexistente)
	r.NoMethod(MetodoNaoPermitido)
	r.GET("/so-get", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/nada", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), CodigoRotaInexiste)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/so-get", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), CodigoMetodoInvalido)
}
