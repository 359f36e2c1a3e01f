package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pankajkkc01/RAG-application/internal/ai"
	"github.com/pankajkkc01/RAG-application/internal/config"
	"github.com/pankajkkc01/RAG-application/internal/model"
	rabbitmqClient "github.com/pankajkkc01/RAG-application/internal/platform/rabbitmq"
	redisClient "github.com/pankajkkc01/RAG-application/internal/platform/redis"
	sqliteClient "github.com/pankajkkc01/RAG-application/internal/platform/sqlite"
	"github.com/pankajkkc01/RAG-application/internal/repository"
	"github.com/pankajkkc01/RAG-application/internal/splitter"
	"github.com/pankajkkc01/RAG-application/internal/vectorindex"
	"github.com/pankajkkc01/RAG-application/internal/worker"
)

// App holds the process-lifetime resources: the relational store, the vector
// index handle, the caches and the audit worker. Constructed once at startup
// and passed explicitly to the router.
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	Index       *vectorindex.ChromemIndex
	LLM         *ai.Client
	Splitter    *splitter.Splitter
	AuditWorker *worker.AuditPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	db, err := sqliteClient.New(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&model.ChatLog{},
		&model.Document{},
		&model.Feedback{},
		&model.UserLogin{},
		&model.AllowedUser{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	llm := ai.NewClient()
	embedCfg := ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	}
	index, err := vectorindex.NewChromemIndex(
		cfg.Index.Dir,
		cfg.Index.Collection,
		vectorindex.NewEmbeddingFunc(llm, embedCfg),
	)
	if err != nil {
		return nil, err
	}

	tokenLen, err := splitter.TokenLength()
	if err != nil {
		return nil, err
	}
	split := splitter.New(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap, tokenLen)

	feedbackRepo := repository.NewFeedbackRepository(db)
	loginRepo := repository.NewUserLoginRepository(db)
	auditWorker := worker.NewAuditPersistWorker(mqConn, feedbackRepo, loginRepo, cfg.RabbitMQ.AuditQueue)
	if err := auditWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start audit worker failed: %w", err)
	}

	return &App{
		Config:      cfg,
		DB:          db,
		Redis:       redisCli,
		MQConn:      mqConn,
		Index:       index,
		LLM:         llm,
		Splitter:    split,
		AuditWorker: auditWorker,
		StartedAt:   time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.AuditWorker != nil {
		a.AuditWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
