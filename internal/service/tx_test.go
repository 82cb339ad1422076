package service

import (
	"context"
	"errors"
	"testing"

	"barpos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRunTx(t *testing.T) {
	db := newTestDB(t)
	falha := errors.New("conexão perdida")

	t.Run("business error is not retried", func(t *testing.T) {
		n := 0
		err := runTx(context.Background(), db, func(*gorm.DB) error {
			n++
			return ErrQuartoOcupado
		})
		assert.ErrorIs(t, err, ErrQuartoOcupado)
		assert.Equal(t, 1, n)
	})

	t.Run("wrapped business error is not retried", func(t *testing.T) {
		n := 0
		err := runTx(context.Background(), db, func(*gorm.DB) error {
			n++
			return erroComandasAbertas(2)
		})
		assert.ErrorIs(t, err, ErrComandasAbertas)
		assert.Equal(t, 1, n)
	})

	t.Run("persistent failure becomes ErrPersistencia", func(t *testing.T) {
		n := 0
		err := runTx(context.Background(), db, func(*gorm.DB) error {
			n++
			return falha
		})
		assert.ErrorIs(t, err, ErrPersistencia)
		assert.Equal(t, 2, n)
	})

	t.Run("second attempt succeeds", func(t *testing.T) {
		n := 0
		err := runTx(context.Background(), db, func(*gorm.DB) error {
			n++
			if n == 1 {
				return falha
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := runTx(ctx, db, func(*gorm.DB) error { return falha })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		err := runTx(context.Background(), db, func(tx *gorm.DB) error {
			if err := tx.Create(&model.Quarto{Numero: "77", Ativo: true}).Error; err != nil {
				return err
			}
			return ErrValorInvalido
		})
		require.ErrorIs(t, err, ErrValorInvalido)

		var n int64
		require.NoError(t, db.Model(&model.Quarto{}).Where("numero = ?", "77").Count(&n).Error)
		assert.Zero(t, n)
	})
}
