package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barpos/internal/config"
	"barpos/internal/infra"
	"barpos/internal/middleware"
	"barpos/internal/router"
	"barpos/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional: without it there are no live notifications and no
	// closing-slip jobs, but billing and the register keep working.
	var (
		rdb         *redis.Client
		notificador = infra.NopNotificador()
		dispatcher  *worker.Dispatcher
	)
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, notifications and closing slips disabled")
			rdb = nil
		} else {
			notificador = infra.NewRedisNotificador(rdb)
			dispatcher = worker.NewDispatcher(rdb)
		}
	}

	svcs := router.NewServices(cfg, db, notificador, dispatcher)

	// Worker handlers are wired here (composition root) so that the pool
	// has access to the services and the SMTP relay.
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	var workers interface{ Wait() }
	if rdb != nil && cfg.WorkerPoolSize > 0 {
		handlers := map[string]worker.Handler{}
		destinatario := ""
		if mailer := infra.NewMailer(cfg); mailer.Configurado() {
			handlers[worker.QueueEmail] = worker.NewEmailWorker(mailer, smtpCB)
			destinatario = cfg.EmailGerencia
		}
		handlers[worker.QueueFechamento] = worker.NewFechamentoWorker(svcs.Caixa, dispatcher, cfg.PDFStoragePath, destinatario)
		workers = worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS*60, time.Minute)
	go limiter.Purge(ctx, 5*time.Minute)

	r := router.New(cfg, db, rdb, svcs, smtpCB, limiter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("barpos listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if workers != nil {
		workers.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
