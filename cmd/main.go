package main

import (
	"context"
	"log"
	"net/http"

	"github.com/formflow/backend/internal/audit"
	"github.com/formflow/backend/internal/config"
	"github.com/formflow/backend/internal/dispatch"
	"github.com/formflow/backend/internal/email"
	"github.com/formflow/backend/internal/handlers"
	"github.com/formflow/backend/internal/middleware"
	"github.com/formflow/backend/internal/queue"
	"github.com/formflow/backend/internal/store"
	"github.com/formflow/backend/internal/triggers"
	"github.com/formflow/backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger, err := newLogger(cfg.Email.LocalMode)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	redisClient, err := redis.InitRedis(cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	resolver := email.NewResolver(cfg.Email, logger)
	source := dispatch.NewClientSource(resolver, cfg.Server.Timeout, logger)
	renderer := email.NewRenderer()
	auditLogger := audit.NewLogger(redisClient)
	dispatcher := dispatch.New(source, renderer, auditLogger, logger)

	docStore := store.New(redisClient)

	var rabbitClient *queue.RabbitMqClient
	if cfg.RabbitMQ.URL != "" {
		rabbitClient, err = queue.NewRabbitMqService(cfg.RabbitMQ)
		if err != nil {
			logger.Error("failed to connect to rabbitmq, submission triggers disabled", zap.Error(err))
			rabbitClient = nil
		}
	} else {
		logger.Warn("no rabbitmq url configured, submission triggers disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if rabbitClient != nil {
		defer rabbitClient.CloseConnection()
		if err := rabbitClient.SetUpExchangeAndQueue(); err != nil {
			logger.Fatal("failed to declare exchange and queues", zap.Error(err))
		}
		triggerHandler := triggers.NewHandler(docStore, dispatcher, logger)
		go func() {
			if err := rabbitClient.Consume(ctx, cfg.RabbitMQ.CreatedQueue, triggerHandler.HandleCreatedMessage); err != nil && ctx.Err() == nil {
				logger.Error("submission created consumer stopped", zap.Error(err))
			}
		}()
		go func() {
			if err := rabbitClient.Consume(ctx, cfg.RabbitMQ.UpdatedQueue, triggerHandler.HandleUpdatedMessage); err != nil && ctx.Err() == nil {
				logger.Error("submission updated consumer stopped", zap.Error(err))
			}
		}()
	}

	notificationHandler := handlers.NewNotificationHandler(dispatcher, logger)
	shareHandler := handlers.NewShareHandler(docStore, dispatcher, cfg.App.BaseURL, logger)
	linkHandler := handlers.NewLinkHandler(docStore, cfg.App.BaseURL, logger)
	exportHandler := handlers.NewExportHandler(docStore, logger)
	healthHandler := handlers.NewHealthHandler(rabbitClient, redisClient, source)

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.CorrelationID())

	api := r.Group("/api/v1")
	{
		api.POST("/notifications/email", notificationHandler.SendEmail)
		api.POST("/forms/share", shareHandler.ShareWithCohorts)
		api.POST("/forms/export", exportHandler.Export)
		api.POST("/links/validate", linkHandler.ValidateAccess)
		api.POST("/forms/:id/links", middleware.AuthMiddleware(cfg.Auth.JWTSecret), linkHandler.GenerateLink)
	}

	r.GET("/health", healthHandler.HealthCheck)

	r.GET("/alive", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "Alive",
			"service": "formflow-backend",
		})
	})

	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(localMode bool) (*zap.Logger, error) {
	if localMode {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
