package infra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pub/Sub channels consumed by the terminals for live updates.
const (
	CanalQuartos = "barpos:quartos"
	CanalCaixa   = "barpos:caixa"
)

// Evento is the payload published after a committed state change.
type Evento struct {
	Tipo   string `json:"tipo"`
	ID     string `json:"id"`
	Status string `json:"status"`
	Em     string `json:"em"`
}

// Notificador fans state changes out to other terminals. Delivery is advisory:
// callers log a failure and carry on.
type Notificador interface {
	Publicar(ctx context.Context, canal string, ev Evento) error
}

type redisNotificador struct{ rdb *redis.Client }

// NewRedisNotificador publishes events on Redis Pub/Sub.
func NewRedisNotificador(rdb *redis.Client) Notificador {
	return &redisNotificador{rdb: rdb}
}

func (n *redisNotificador) Publicar(ctx context.Context, canal string, ev Evento) error {
	if ev.Em == "" {
		ev.Em = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, canal, data).Err()
}

type nopNotificador struct{}

// NopNotificador discards events. Used when Redis is not configured.
func NopNotificador() Notificador { return nopNotificador{} }

func (nopNotificador) Publicar(context.Context, string, Evento) error { return nil }
