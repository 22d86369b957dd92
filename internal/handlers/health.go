package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/middleware"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/store"
)

// APIVersion is reported by GET /api/v1/info.
const APIVersion = "0.1.0"

// readyTimeout bounds the store ping so a hung database cannot stall the
// readiness probe.
const readyTimeout = 2 * time.Second

// HealthHandler serves liveness, readiness and build-info endpoints.
type HealthHandler struct {
	store     store.Store
	startTime time.Time
	env       string
}

func NewHealthHandler(st store.Store, env string) *HealthHandler {
	return &HealthHandler{
		store:     st,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the GET /health/ready body.
type ReadyResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// InfoResponse is the GET /api/v1/info body.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health is the liveness probe. It answers 200 without touching any
// dependency.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

// Ready is the readiness probe. It pings the record store and answers 503
// while the store is unreachable, which keeps traffic away from an instance
// whose database is down.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		if log := middleware.GetLogger(c); log != nil {
			log.Error("Record store unreachable", err, map[string]interface{}{
				"timeout": readyTimeout.String(),
			})
		}
		c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Store:  "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, ReadyResponse{
		Status: "ready",
		Store:  "connected",
	})
}

// Info reports version, environment and uptime.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      time.Since(h.startTime).Truncate(time.Second).String(),
	})
}
