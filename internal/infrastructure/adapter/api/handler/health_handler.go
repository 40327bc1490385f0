package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
)

// Pinger reports whether the backing store is reachable. Satisfied by the
// database manager.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers readiness probes.
type HealthHandler struct {
	db     Pinger
	logger coreport.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(db Pinger, logger coreport.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Check handles GET /health. Database reachability decides readiness; the
// cache and gateway are allowed to be down.
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.Error("Health check failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unavailable",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
