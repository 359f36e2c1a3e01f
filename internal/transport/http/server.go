package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pankajkkc01/RAG-application/internal/ai"
	"github.com/pankajkkc01/RAG-application/internal/app"
	"github.com/pankajkkc01/RAG-application/internal/bootstrap"
	"github.com/pankajkkc01/RAG-application/internal/cache"
	"github.com/pankajkkc01/RAG-application/internal/platform/rabbitmq"
	"github.com/pankajkkc01/RAG-application/internal/repository"
	"github.com/pankajkkc01/RAG-application/internal/transport/http/handler"
)

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(a *bootstrap.App) *gin.Engine {
	cfg := a.Config
	gin.SetMode(cfg.App.GinMode)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.StaticFile("/", "web/index.html")

	chatLogRepo := repository.NewChatLogRepository(a.DB)
	docRepo := repository.NewDocumentRepository(a.DB)
	feedbackRepo := repository.NewFeedbackRepository(a.DB)
	loginRepo := repository.NewUserLoginRepository(a.DB)
	allowedRepo := repository.NewAllowedUserRepository(a.DB)

	historyCache := cache.NewHistoryCache(a.Redis, time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second)
	auditPublisher := rabbitmq.NewAuditPublisher(a.MQConn, cfg.RabbitMQ.AuditQueue)

	chatCfg := ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}
	chatService := app.NewChatService(
		chatLogRepo,
		feedbackRepo,
		a.Index,
		a.LLM,
		historyCache,
		auditPublisher,
		chatCfg,
		cfg.LLM.AllowedModels,
		cfg.Index.TopK,
	)
	docService := app.NewDocumentService(docRepo, a.Index, a.Splitter, cfg.Upload.Dir, cfg.Upload.StagingDir)
	accessService := app.NewAccessService(allowedRepo, loginRepo, auditPublisher)

	chatHandler := handler.NewChatHandler(chatService)
	docHandler := handler.NewDocumentHandler(docService, int64(cfg.Upload.MaxSizeMB)<<20)
	userHandler := handler.NewUserHandler(accessService)
	healthHandler := handler.NewHealthHandler(a)

	r.GET("/healthz", healthHandler.Check)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/chat", chatHandler.Chat)
		v1.POST("/chat/stream", chatHandler.ChatStream)
		v1.GET("/chat/history", chatHandler.History)
		v1.POST("/feedback", chatHandler.Feedback)

		v1.POST("/documents", docHandler.Upload)
		v1.GET("/documents", docHandler.List)
		v1.DELETE("/documents/:id", docHandler.Delete)

		v1.POST("/login", userHandler.Login)
		v1.GET("/users", userHandler.ListLogins)

		v1.POST("/allowed-users", userHandler.AddAllowedUsers)
		v1.DELETE("/allowed-users/:email", userHandler.RemoveAllowedUser)
		v1.GET("/allowed-users", userHandler.ListAllowedUsers)
	}

	return r
}
