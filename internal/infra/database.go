package infra

import (
	"fmt"

	"barpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the Postgres pool and brings the schema up to date.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table and then applies the patches
// AutoMigrate cannot express. Used by NewDatabase and by the test suites,
// which run it against SQLite and Postgres alike.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.FaixaPreco{},
		&model.Quarto{},
		&model.Acompanhante{},
		&model.AtivacaoAcompanhante{},
		&model.SessaoCaixa{},
		&model.Sangria{},
		&model.Comanda{},
		&model.ItemComanda{},
		&model.Ocupacao{},
		&model.OcupacaoAcompanhante{},
		&model.RegistroComissao{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches holds the partial unique indexes that enforce the
// "one active occupation per room" and "one open register session" rules at
// the storage layer. The same statements run on Postgres and SQLite.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_ocupacoes_quarto_ativa
		    ON ocupacoes (quarto_id)
		    WHERE status IN ('aberta', 'calculando')`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_sessoes_caixa_aberta
		    ON sessoes_caixa (status)
		    WHERE status = 'aberta'`,
		`CREATE INDEX IF NOT EXISTS idx_comandas_sessao_status
		    ON comandas (sessao_caixa_id, status)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
