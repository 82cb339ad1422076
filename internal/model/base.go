package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID fills a nil primary key before insert. IDs are generated in Go so
// callers can reference the row before the transaction commits.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (f *FaixaPreco) BeforeCreate(*gorm.DB) error           { assignID(&f.ID); return nil }
func (q *Quarto) BeforeCreate(*gorm.DB) error               { assignID(&q.ID); return nil }
func (o *Ocupacao) BeforeCreate(*gorm.DB) error             { assignID(&o.ID); return nil }
func (c *Comanda) BeforeCreate(*gorm.DB) error              { assignID(&c.ID); return nil }
func (i *ItemComanda) BeforeCreate(*gorm.DB) error          { assignID(&i.ID); return nil }
func (a *Acompanhante) BeforeCreate(*gorm.DB) error         { assignID(&a.ID); return nil }
func (a *AtivacaoAcompanhante) BeforeCreate(*gorm.DB) error { assignID(&a.ID); return nil }
func (r *RegistroComissao) BeforeCreate(*gorm.DB) error     { assignID(&r.ID); return nil }
func (s *SessaoCaixa) BeforeCreate(*gorm.DB) error          { assignID(&s.ID); return nil }
func (s *Sangria) BeforeCreate(*gorm.DB) error              { assignID(&s.ID); return nil }
