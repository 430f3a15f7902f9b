package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ComponentStatus represents the status of system components
type ComponentStatus string

const (
	StatusUp   ComponentStatus = "up"
	StatusDown ComponentStatus = "down"
)

type healthResponse struct {
	Status     string `json:"status"`
	Components struct {
		Embedding ComponentStatus `json:"embedding"`
	} `json:"components"`
}

// CheckHealth reports whether the service and its embedding provider are
// reachable. The search backend is exercised lazily per request, so it is
// not probed here.
func (h *Handler) CheckHealth(c *gin.Context) {
	resp := healthResponse{Status: "ok"}
	resp.Components.Embedding = StatusUp

	if h.ollamaClient != nil {
		if err := h.ollamaClient.Heartbeat(c.Request.Context()); err != nil {
			resp.Status = "degraded"
			resp.Components.Embedding = StatusDown
		}
	}

	sendJSON(c, http.StatusOK, resp)
}
