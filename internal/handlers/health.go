package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/formflow/backend/internal/dispatch"
	"github.com/formflow/backend/internal/queue"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	queue  *queue.RabbitMqClient
	redis  *redis.Client
	source dispatch.SenderSource
}

func NewHealthHandler(queueClient *queue.RabbitMqClient, redisClient *redis.Client, source dispatch.SenderSource) *HealthHandler {
	return &HealthHandler{
		queue:  queueClient,
		redis:  redisClient,
		source: source,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)

	// Check RabbitMQ
	if h.queue != nil && h.queue.IsConnected() {
		checks["rabbitmq"] = "healthy"
	} else {
		checks["rabbitmq"] = "unhealthy"
	}

	// Check Redis
	if err := h.redis.Ping(ctx).Err(); err == nil {
		checks["redis"] = "healthy"
	} else {
		checks["redis"] = "unhealthy"
	}

	// Check the email transport without sending anything
	if sender, _, err := h.source.Sender(); err != nil {
		checks["email"] = "unconfigured"
	} else if err := sender.Verify(ctx); err == nil {
		checks["email"] = "healthy"
	} else {
		checks["email"] = "degraded"
	}

	// Determine overall status
	overallStatus := "healthy"
	for _, status := range checks {
		if status == "unhealthy" || status == "unconfigured" {
			overallStatus = "unhealthy"
			break
		} else if status == "degraded" {
			overallStatus = "degraded"
		}
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
		"version":   "1.0.0",
	})
}
