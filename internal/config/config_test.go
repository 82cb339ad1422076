package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 10, cfg.ToleranciaMinutos)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TOLERANCIA_MINUTOS", "5")
	t.Setenv("CORS_ORIGINS", "http://caixa.local, ,http://bar.local")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.ToleranciaMinutos)
	assert.Equal(t, []string{"http://caixa.local", "http://bar.local"}, cfg.Origins())
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&Config{ToleranciaMinutos: -1}).validate())
	assert.Error(t, (&Config{Env: "production", JWTSecret: "curto"}).validate())
	assert.NoError(t, (&Config{Env: "production", JWTSecret: "0123456789abcdef0123456789abcdef"}).validate())
}
