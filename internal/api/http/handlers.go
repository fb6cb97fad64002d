// Package http exposes the bridge's REST surface: health, service
// discovery, and tool execution. Every filesystem touch goes through
// /services/execute; these handlers do transport shaping only.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glimmerdesk/fsbridge/internal/api/middleware"
	"github.com/glimmerdesk/fsbridge/internal/handle"
	"github.com/glimmerdesk/fsbridge/internal/infrastructure/monitoring"
	"github.com/glimmerdesk/fsbridge/internal/service"
	"github.com/glimmerdesk/fsbridge/internal/types"
	"github.com/glimmerdesk/fsbridge/internal/watch"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	registry *service.Registry
	handles  *handle.Registry
	watches  *watch.Manager
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	started  time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(registry *service.Registry, handles *handle.Registry, watches *watch.Manager, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry: registry,
		handles:  handles,
		watches:  watches,
		metrics:  metrics,
		logger:   logger,
		started:  time.Now(),
	}
}

// Health reports liveness plus live resource counts.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"handles_open":   h.handles.Len(),
		"watch_sessions": h.watches.Len(),
	})
}

// ListServices returns every registered service definition.
func (h *Handlers) ListServices(c *gin.Context) {
	var category *types.Category
	if raw := c.Query("category"); raw != "" {
		cat := types.Category(raw)
		category = &cat
	}

	services := h.registry.List(category)
	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"count":    len(services),
	})
}

// DiscoverRequest is the discovery query body.
type DiscoverRequest struct {
	Intent string `json:"intent" binding:"required"`
	Limit  int    `json:"limit"`
}

// DiscoverServices returns services ranked by relevance to an intent.
func (h *Handlers) DiscoverServices(c *gin.Context) {
	var req DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	services := h.registry.Discover(req.Intent, req.Limit)
	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"count":    len(services),
	})
}

// ExecuteRequest is the tool execution body.
type ExecuteRequest struct {
	ToolID      string                 `json:"tool_id" binding:"required"`
	Params      map[string]interface{} `json:"params"`
	WindowLabel *string                `json:"window_label,omitempty"`
}

// ExecuteService dispatches one tool invocation.
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Params == nil {
		req.Params = make(map[string]interface{})
	}

	callCtx := &types.Context{WindowLabel: req.WindowLabel}
	if rid := c.GetString(middleware.RequestIDKey); rid != "" {
		callCtx.RequestID = &rid
	}

	timer := monitoring.NewTimer(h.metrics, req.ToolID)
	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, callCtx)
	if err != nil {
		timer.Stop("error")
		h.logger.Error("tool dispatch failed",
			zap.String("tool", req.ToolID),
			zap.Error(err),
		)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if result.Success {
		timer.Stop("success")
	} else {
		timer.Stop("failure")
		if result.ErrorKind != nil {
			h.metrics.RecordOpError(req.ToolID, *result.ErrorKind)
		}
		h.logger.Warn("tool rejected",
			zap.String("tool", req.ToolID),
			zap.Stringp("kind", result.ErrorKind),
			zap.Stringp("error", result.Error),
			zap.Stringp("window", req.WindowLabel),
		)
	}

	h.metrics.SetHandlesOpen(h.handles.Len())
	h.metrics.SetWatchSessions(h.watches.Len())

	c.JSON(http.StatusOK, result)
}

// Stats returns registry statistics.
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Stats())
}
