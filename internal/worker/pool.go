package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueFechamento = "jobs:fechamento_caixa"
	QueueEmail      = "jobs:email"

	// MaxTentativas is how many times a job runs before going to the DLQ.
	MaxTentativas = 5
)

// Job is the envelope stored in every queue.
type Job struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Tentativas int             `json:"tentativas"`
}

// Handler processes the payload of one job. A returned error re-queues the
// job unless it is marked with Permanente.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

type erroPermanente struct{ err error }

func (e erroPermanente) Error() string { return e.err.Error() }
func (e erroPermanente) Unwrap() error { return e.err }

// Permanente marks err as not worth retrying: the job goes straight to the DLQ.
func Permanente(err error) error { return erroPermanente{err: err} }

func isPermanente(err error) bool {
	var p erroPermanente
	return errors.As(err, &p)
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueFechamento schedules the closing slip of a register session.
func (d *Dispatcher) EnqueueFechamento(ctx context.Context, sessaoID uuid.UUID) error {
	return d.enqueue(ctx, QueueFechamento, "fechamento_caixa", FechamentoJobPayload{SessaoCaixaID: sessaoID.String()})
}

// EnqueueEmail schedules an e-mail with an optional attachment.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming every queue that
// has a handler. The returned WaitGroup completes once all of them have
// observed ctx cancellation.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Handler) *sync.WaitGroup {
	queues := make([]string, 0, len(handlers))
	for q := range handlers {
		queues = append(queues, q)
	}
	wg := &sync.WaitGroup{}
	if len(queues) == 0 {
		return wg
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, rdb, id, queues, handlers)
		}(i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", queues).Msg("worker pool started")
	return wg
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, queues []string, handlers map[string]Handler) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "desconhecido", json.RawMessage(fmt.Sprintf("%q", raw)), err.Error(), 0)
		return
	}
	h, ok := handlers[queue]
	if !ok {
		return
	}

	err := h.Process(ctx, job.Payload)
	if err == nil {
		log.Info().Str("type", job.Type).Str("queue", queue).Msg("job processed")
		return
	}
	job.Tentativas++

	if !deveReenfileirar(job, err) {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Tentativas)
		return
	}

	log.Warn().Err(err).Str("type", job.Type).Int("tentativas", job.Tentativas).Msg("job failed, re-queueing")
	select {
	case <-ctx.Done():
	case <-time.After(backoff(job.Tentativas)):
	}
	// Use a fresh context so a job popped just before shutdown is not lost.
	pushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := push(pushCtx, rdb, queue, job); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("failed to re-queue job")
	}
}

// deveReenfileirar reports whether a failed job (Tentativas already counting
// this failure) gets another run.
func deveReenfileirar(job Job, err error) bool {
	if isPermanente(err) {
		return false
	}
	return job.Tentativas < MaxTentativas
}

// backoff grows linearly, 2s per attempt, capped at 10s.
func backoff(tentativas int) time.Duration {
	d := time.Duration(tentativas) * 2 * time.Second
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	return d
}
