package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler handles GET /health — liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadinessHandler handles GET /health/ready — readiness probe.
// Checks MongoDB and Redis connectivity before declaring the service ready.
type ReadinessHandler struct {
	mongo *mongo.Database
	redis *redis.Client
}

func NewReadinessHandler(db *mongo.Database, rdb *redis.Client) *ReadinessHandler {
	return &ReadinessHandler{mongo: db, redis: rdb}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	deps := map[string]dependencyStatus{
		"mongo": {Status: "ok"},
		"redis": {Status: "ok"},
	}
	healthy := true

	if err := h.mongo.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		deps["mongo"] = dependencyStatus{Status: "unavailable", Error: err.Error()}
		healthy = false
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		deps["redis"] = dependencyStatus{Status: "unavailable", Error: err.Error()}
		healthy = false
	}

	status := http.StatusOK
	resp := readinessResponse{Status: "ready", Dependencies: deps}
	if !healthy {
		status = http.StatusServiceUnavailable
		resp.Status = "degraded"
	}
	return c.JSON(status, resp)
}
