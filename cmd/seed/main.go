// cmd/seed loads the demo price-tier table, rooms and companions, and opens
// today's activation period for each companion.
// Uso: go run ./cmd/seed
package main

import (
	"errors"
	"fmt"
	"time"

	"barpos/internal/config"
	"barpos/internal/infra"
	"barpos/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.FaixaPreco{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			faixas := []model.FaixaPreco{
				{Minutos: 30, Preco: decimal.NewFromInt(10), Rotulo: "30 min", Ativa: true},
				{Minutos: 60, Preco: decimal.NewFromInt(20), Rotulo: "1 hora", Ativa: true},
				{Minutos: 120, Preco: decimal.NewFromInt(35), Rotulo: "2 horas", Ativa: true},
			}
			if err := tx.Create(&faixas).Error; err != nil {
				return err
			}
		}

		for i := 1; i <= 8; i++ {
			q := model.Quarto{Numero: fmt.Sprintf("%02d", i), Ativo: true}
			if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "numero"}}, DoNothing: true}).Create(&q).Error; err != nil {
				return err
			}
		}

		dia := time.Now().Format("2006-01-02")
		for _, nome := range []string{"Ana", "Bia", "Carla"} {
			var a model.Acompanhante
			err := tx.Where("nome = ?", nome).First(&a).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				a = model.Acompanhante{Nome: nome, PercentualComissao: decimal.NewFromInt(40), Ativo: true}
				err = tx.Create(&a).Error
			}
			if err != nil {
				return err
			}
			var abertas int64
			if err := tx.Model(&model.AtivacaoAcompanhante{}).
				Where("acompanhante_id = ? AND dia = ? AND encerrada_em IS NULL", a.ID, dia).
				Count(&abertas).Error; err != nil {
				return err
			}
			if abertas == 0 {
				atv := model.AtivacaoAcompanhante{AcompanhanteID: a.ID, Dia: dia, IniciadaEm: time.Now()}
				if err := tx.Create(&atv).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Msg("seed concluído")
}
