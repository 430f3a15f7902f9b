package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"okchat/src/core/permission"
	"okchat/src/core/search"
	"okchat/src/infrastructure/events"
	"okchat/src/infrastructure/integrations/ollama"
	"okchat/src/storage/minioctrl"
)

// Handler wires the retrieval core to the HTTP surface. The event and minio
// services are optional; a nil value disables audit events or download-link
// enrichment respectively.
type Handler struct {
	searchService     *search.Service
	permissionService *permission.Service
	eventService      *events.SearchEventService
	minioService      *minioctrl.MinioService
	ollamaClient      *ollama.Client
}

func NewHandler(searchService *search.Service, permissionService *permission.Service, eventService *events.SearchEventService, minioService *minioctrl.MinioService, ollamaClient *ollama.Client) *Handler {
	return &Handler{
		searchService:     searchService,
		permissionService: permissionService,
		eventService:      eventService,
		minioService:      minioService,
		ollamaClient:      ollamaClient,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.POST("/search", h.Search)
	api.GET("/health", h.CheckHealth)
}

// Common error response structure
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func sendError(c *gin.Context, status int, err error) {
	var code string
	switch {
	case errors.Is(err, search.ErrSearchUnavailable):
		code = "SEARCH_UNAVAILABLE"
		status = http.StatusServiceUnavailable
	case status == http.StatusBadRequest:
		code = "INVALID_REQUEST"
	default:
		code = "INTERNAL_ERROR"
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
