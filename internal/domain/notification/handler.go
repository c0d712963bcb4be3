package notification

import (
	"log/slog"
	"net/http"

	"github.com/Changwoon-overview/Socialtalk/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the notification domain.
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// DispatchEvent handles POST /api/v1/events
// Dispatches the event inline and returns the delivery log entries written.
func (h *Handler) DispatchEvent(c *gin.Context) {
	var payload EventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	entries, err := h.service.Dispatch(c.Request.Context(), &payload)
	if err != nil {
		slog.Error("dispatch event failed",
			"error", err,
			"kind", payload.Kind,
			"status_key", payload.StatusKey,
		)
		common.HandleError(c, err)
		return
	}

	if entries == nil {
		entries = []*DeliveryLogEntry{}
	}
	common.Success(c, http.StatusOK, gin.H{"entries": entries})
}

// EnqueueEvent handles POST /api/v1/events/async
// Queues the event for the worker and returns 202 Accepted.
func (h *Handler) EnqueueEvent(c *gin.Context) {
	var payload EventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.service.Enqueue(c.Request.Context(), &payload); err != nil {
		slog.Error("enqueue event failed",
			"error", err,
			"kind", payload.Kind,
			"status_key", payload.StatusKey,
		)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusAccepted, gin.H{"status": "queued"})
}

// ListRules handles GET /api/v1/rules
func (h *Handler) ListRules(c *gin.Context) {
	rules, err := h.service.ListRules(c.Request.Context())
	if err != nil {
		common.HandleError(c, err)
		return
	}
	if rules == nil {
		rules = []*Rule{}
	}
	common.Success(c, http.StatusOK, gin.H{"rules": rules})
}

// CreateRule handles POST /api/v1/rules
func (h *Handler) CreateRule(c *gin.Context) {
	var rule Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := h.service.CreateRule(c.Request.Context(), &rule)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusCreated, created)
}

// DeleteRule handles DELETE /api/v1/rules/:id
func (h *Handler) DeleteRule(c *gin.Context) {
	if err := h.service.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		common.HandleError(c, err)
		return
	}
	common.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

// ListLogs handles GET /api/v1/logs
func (h *Handler) ListLogs(c *gin.Context) {
	var filter LogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid query parameters: "+err.Error())
		return
	}

	resp, err := h.service.ListLogs(c.Request.Context(), filter)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, resp)
}

// RegisterRoutes registers notification routes to the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/events", h.DispatchEvent)
	rg.POST("/events/async", h.EnqueueEvent)
	rg.GET("/rules", h.ListRules)
	rg.POST("/rules", h.CreateRule)
	rg.DELETE("/rules/:id", h.DeleteRule)
	rg.GET("/logs", h.ListLogs)
}
