package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crmtasks/internal/realtime"
)

type RealtimeHandler struct {
	hub *realtime.TaskHub
}

func NewRealtimeHandler(hub *realtime.TaskHub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Subscribe streams task.created / task.completed events over a WebSocket.
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	tenant := ""
	if t := tenantFromCtx(c); t != nil {
		tenant = *t
	}
	if err := h.hub.ServeWS(c.Writer, c.Request, tenant); err != nil {
		log.Printf("[ws][subscribe][err] %v", err)
	}
}

type pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db pinger
}

func NewHealthHandler(db pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		log.Printf("[health][err] %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
