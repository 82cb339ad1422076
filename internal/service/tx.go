package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction. A failure that is not a
// business rule is retried once; a second failure surfaces as ErrPersistencia.
// The transaction is rolled back on every error, so no partial state remains.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for tentativa := 1; tentativa <= 2; tentativa++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if _, ok := IsErroNegocio(err); ok {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn().Err(err).Int("tentativa", tentativa).Msg("transaction failed")
	}
	return fmt.Errorf("%w: %v", ErrPersistencia, err)
}
