package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"okchat/src/core/search"
	"okchat/src/infrastructure/events"
	"okchat/src/log"
	"okchat/src/storage/minioctrl"
)

type searchRequest struct {
	UserID   int64    `json:"userId" binding:"required"`
	Keywords []string `json:"keywords"`
	Titles   []string `json:"titles"`
	Contents []string `json:"contents"`
	Paths    []string `json:"paths"`
	TopK     int      `json:"topK"`
}

type searchResponse struct {
	QueryID string                `json:"queryId"`
	Results []search.SearchResult `json:"results"`
}

// Search godoc
// @Summary Permission-filtered hybrid search over the knowledge base
// @Tags search
// @Accept json
// @Produce json
// @Param body body searchRequest true "Search parameters"
// @Success 200 {object} searchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /search [post]
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	criteria := buildCriteria(req)
	started := time.Now()

	results, err := h.searchService.MultiSearch(c.Request.Context(), criteria, req.TopK)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	filtered, err := h.permissionService.FilterByUser(c.Request.Context(), results, req.UserID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	h.enrichDownloadURLs(c, filtered)

	queryID := h.searchService.QueryID()
	if h.eventService != nil {
		err := h.eventService.PublishSearchCompleted(events.SearchCompletedEvent{
			QueryID:       queryID,
			UserID:        req.UserID,
			CriteriaCount: len(criteria),
			ResultCount:   len(filtered),
			DurationMs:    time.Since(started).Milliseconds(),
		})
		if err != nil {
			log.Error(err, "failed to publish search audit event", "queryId", queryID)
		}
	}

	sendJSON(c, http.StatusOK, searchResponse{
		QueryID: queryID,
		Results: filtered,
	})
}

// buildCriteria maps the request term lists onto typed criteria. Order is
// stable: keyword, title, content, path.
func buildCriteria(req searchRequest) []search.SearchCriteria {
	var criteria []search.SearchCriteria
	if len(req.Keywords) > 0 {
		criteria = append(criteria, search.NewKeywordCriteria(req.Keywords...))
	}
	if len(req.Titles) > 0 {
		criteria = append(criteria, search.NewTitleCriteria(req.Titles...))
	}
	if len(req.Contents) > 0 {
		criteria = append(criteria, search.NewContentCriteria(req.Contents...))
	}
	if len(req.Paths) > 0 {
		criteria = append(criteria, search.NewPathCriteria(req.Paths...))
	}
	return criteria
}

// enrichDownloadURLs swaps bare object keys for presigned links. Results
// that already carry an absolute URL pass through untouched.
func (h *Handler) enrichDownloadURLs(c *gin.Context, results []search.SearchResult) {
	if h.minioService == nil {
		return
	}
	for i := range results {
		key := results[i].DownloadURL
		if key == "" || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
			continue
		}
		presigned, err := h.minioService.PresignedDownloadURL(c.Request.Context(), minioctrl.DocumentBucket, key, minioctrl.DefaultDownloadExpiry)
		if err != nil {
			log.Error(err, "failed to presign download url", "objectKey", key)
			continue
		}
		results[i].DownloadURL = presigned
	}
}
