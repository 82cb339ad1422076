package model

import (
	"time"

	"github.com/google/uuid"
)

// Quarto is administered elsewhere; occupations only reference it.
type Quarto struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Numero    string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	Ativo     bool      `gorm:"not null"`
	CreatedAt time.Time
}
