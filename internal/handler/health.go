package handler

import (
	"context"
	"net/http"
	"time"

	"barpos/internal/infra"
	"barpos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health checks DB and Redis connectivity, the SMTP breaker and the size of
// the dead letter queues. Never exposes credentials or internals.
// Redis is optional: without it the service still bills, so rdb == nil
// reports "disabled" and does not fail the check.
func Health(db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"db": dbStatus}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else {
				dlq := gin.H{}
				for _, q := range []string{worker.QueueFechamento, worker.QueueEmail} {
					if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
						dlq[q] = n
					}
				}
				body["dlq"] = dlq
			}
		}
		body["redis"] = redisStatus

		if smtpCB != nil {
			body["smtp_circuit"] = smtpCB.State().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = status == http.StatusOK
		c.JSON(status, body)
	}
}
