package worker

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeveReenfileirar(t *testing.T) {
	falha := errors.New("smtp down")
	casos := []struct {
		nome       string
		tentativas int
		err        error
		want       bool
	}{
		{"first failure", 1, falha, true},
		{"last retry", MaxTentativas - 1, falha, true},
		{"exhausted", MaxTentativas, falha, false},
		{"permanent", 1, Permanente(falha), false},
		{"wrapped permanent", 1, fmt.Errorf("fechamento: %w", Permanente(falha)), false},
	}
	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			assert.Equal(t, tc.want, deveReenfileirar(Job{Tentativas: tc.tentativas}, tc.err))
		})
	}
}

func TestPermanenteKeepsCause(t *testing.T) {
	causa := errors.New("payload invalido")
	err := Permanente(causa)
	assert.ErrorIs(t, err, causa)
	assert.Equal(t, causa.Error(), err.Error())
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoff(1))
	assert.Equal(t, 8*time.Second, backoff(4))
	assert.Equal(t, 10*time.Second, backoff(5))
	assert.Equal(t, 10*time.Second, backoff(50))
}
