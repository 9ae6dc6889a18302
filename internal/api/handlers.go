// internal/api/handlers.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simforge/studio3d/internal/di"
	apperrors "github.com/simforge/studio3d/internal/errors"
	"github.com/simforge/studio3d/internal/models"
	"github.com/simforge/studio3d/internal/services"
	"github.com/simforge/studio3d/internal/utils"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	SceneService  *services.SceneService
	PromptService *services.PromptService
	Hub           *Hub
	Response      *ResponseHelper

	logger    *utils.Logger
	metrics   *utils.MetricsCollector
	startTime time.Time
}

// NewHandler wires a handler from the DI container.
func NewHandler() *Handler {
	container := di.GetContainer()

	h := &Handler{
		Response:  NewResponseHelper(),
		logger:    utils.GetLogger(),
		metrics:   utils.GetMetricsCollector(),
		startTime: time.Now(),
	}

	if svc, ok := container.Get("scene").(*services.SceneService); ok {
		h.SceneService = svc
	}
	if svc, ok := container.Get("prompt").(*services.PromptService); ok {
		h.PromptService = svc
	}
	if hub, ok := container.Get("hub").(*Hub); ok {
		h.Hub = hub
	}

	return h
}

// respondError maps an application error to the right HTTP status.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidationError(err):
		h.Response.BadRequest(c, err.Error())
	case apperrors.IsNotFoundError(err):
		h.Response.Error(c, http.StatusNotFound, ErrorSceneNotFound, err.Error())
	case apperrors.IsConflictError(err):
		h.Response.Conflict(c, err.Error())
	default:
		h.logger.Errorf("request failed: %v", err)
		h.Response.InternalError(c, "An internal error occurred")
	}
}

// HealthCheck reports service liveness.
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"status": "ok",
		"uptime": time.Since(h.startTime).String(),
	})
}

// GetScene returns the current scene state.
// GET /api/scene
func (h *Handler) GetScene(c *gin.Context) {
	h.Response.Success(c, h.SceneService.Snapshot())
}

// ApplyActions applies a pre-built action batch, bypassing the parser.
// POST /api/scene/actions
func (h *Handler) ApplyActions(c *gin.Context) {
	var req struct {
		Actions []models.Action `json:"actions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid action batch", err.Error())
		return
	}
	if len(req.Actions) == 0 {
		h.Response.BadRequest(c, "actions must not be empty")
		return
	}

	state, result := h.SceneService.ApplyActions(req.Actions)
	h.Response.Success(c, gin.H{
		"scene":   state,
		"applied": result.Applied,
		"skipped": result.Skipped,
	})
}

// ResetScene restores the default or empty scene.
// POST /api/scene/reset
func (h *Handler) ResetScene(c *gin.Context) {
	req := struct {
		KeepDefaults *bool `json:"keep_defaults"`
	}{}
	// An empty body means a default reset.
	c.ShouldBindJSON(&req)

	keepDefaults := true
	if req.KeepDefaults != nil {
		keepDefaults = *req.KeepDefaults
	}

	state := h.SceneService.Reset(keepDefaults)
	h.Response.Success(c, state, "scene reset")
}

// ExecutePrompt parses a prompt and applies the resulting actions.
// POST /api/prompt
func (h *Handler) ExecutePrompt(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	resp, state, err := h.PromptService.Execute(req.Prompt)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// A prompt the parser could not understand is still a 200; the
	// response body carries success=false and the hint message.
	h.Response.Success(c, gin.H{
		"result": resp,
		"scene":  state,
	})
}

// ParsePrompt parses a prompt without applying it.
// POST /api/prompt/parse
func (h *Handler) ParsePrompt(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	resp, err := h.PromptService.Preview(req.Prompt)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, resp)
}

// GetHistory returns the prompt history, newest first.
// GET /api/history
func (h *Handler) GetHistory(c *gin.Context) {
	h.Response.Success(c, h.PromptService.History())
}

// ClearHistory empties the prompt history.
// POST /api/history/clear
func (h *Handler) ClearHistory(c *gin.Context) {
	h.PromptService.ClearHistory()
	h.Response.Success(c, nil, "history cleared")
}

// GetStats returns service counters.
// GET /api/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats := h.metrics.Snapshot()
	stats["websocket_clients"] = h.Hub.ClientCount()
	h.Response.Success(c, stats)
}

// ListScenes lists saved scene snapshots.
// GET /api/scenes
func (h *Handler) ListScenes(c *gin.Context) {
	names, err := h.SceneService.ListScenes()
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, gin.H{"scenes": names})
}

// SaveScene stores the current scene under a name.
// POST /api/scenes/:name
func (h *Handler) SaveScene(c *gin.Context) {
	name := c.Param("name")
	if err := h.SceneService.SaveScene(name); err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Created(c, gin.H{"name": name}, "scene saved")
}

// LoadScene replaces the current scene with a saved snapshot.
// POST /api/scenes/:name/load
func (h *Handler) LoadScene(c *gin.Context) {
	name := c.Param("name")
	state, err := h.SceneService.LoadScene(name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, state, "scene loaded")
}

// DeleteScene removes a saved snapshot.
// DELETE /api/scenes/:name
func (h *Handler) DeleteScene(c *gin.Context) {
	name := c.Param("name")
	if err := h.SceneService.DeleteScene(name); err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, nil, "scene deleted")
}

// SceneWebSocket upgrades to the live scene stream.
// GET /ws/scene
func (h *Handler) SceneWebSocket(c *gin.Context) {
	h.Hub.ServeWS(c, h.SceneService.Snapshot())
}

// WebSocketStatus reports hub connection state.
// GET /api/ws/status
func (h *Handler) WebSocketStatus(c *gin.Context) {
	h.Response.Success(c, h.Hub.Status())
}
