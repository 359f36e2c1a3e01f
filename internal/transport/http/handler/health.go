package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pankajkkc01/RAG-application/internal/bootstrap"
	"github.com/pankajkkc01/RAG-application/internal/transport/http/response"
)

type HealthHandler struct {
	app *bootstrap.App
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Check pings each backing service and reports per-dependency status. The
// endpoint returns 200 as long as the process is serving; degraded
// dependencies show up in the payload.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	status := gin.H{
		"status": "ok",
		"uptime": time.Since(h.app.StartedAt).Round(time.Second).String(),
	}

	dbStatus := "ok"
	if sqlDB, err := h.app.DB.DB(); err != nil {
		dbStatus = err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = err.Error()
	}
	status["store"] = dbStatus

	redisStatus := "ok"
	if err := h.app.Redis.Ping(ctx).Err(); err != nil {
		redisStatus = err.Error()
	}
	status["redis"] = redisStatus

	mqStatus := "ok"
	if h.app.MQConn.IsClosed() {
		mqStatus = "connection closed"
	}
	status["rabbitmq"] = mqStatus

	status["indexed_chunks"] = h.app.Index.Count()

	response.OK(c, status)
}
