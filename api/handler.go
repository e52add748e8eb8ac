package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/TemirlanOspanov/mobileencoapp-sub001/models"
	"github.com/TemirlanOspanov/mobileencoapp-sub001/services"
	"github.com/TemirlanOspanov/mobileencoapp-sub001/utils"

	"github.com/gin-gonic/gin"
)

// APIHandler holds all dependencies for API handlers.
type APIHandler struct {
	searchService      services.SearchService
	progressService    services.ProgressService
	achievementService services.AchievementService
	completionService  services.CompletionService
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(
	searchService services.SearchService,
	progressService services.ProgressService,
	achievementService services.AchievementService,
	completionService services.CompletionService,
) *APIHandler {
	return &APIHandler{
		searchService:      searchService,
		progressService:    progressService,
		achievementService: achievementService,
		completionService:  completionService,
	}
}

// sendServiceError maps the service error kinds onto HTTP statuses.
func sendServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request.", err)
	case errors.Is(err, services.ErrNotFound):
		utils.SendJSONError(c, http.StatusNotFound, "Resource not found.", err)
	case errors.Is(err, services.ErrConflict):
		utils.SendJSONError(c, http.StatusConflict, "Concurrent update conflict, please retry.", err)
	case errors.Is(err, services.ErrUnavailable):
		utils.SendJSONError(c, http.StatusServiceUnavailable, "Service temporarily unavailable, please retry.", err)
	default:
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
	}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid "+name+" parameter.", err)
		return 0, false
	}
	return uint(value), true
}

// SearchHandler handles GET /api/search?q=... and returns ranked results.
// An empty query yields an empty list with status 200, never an error.
func (h *APIHandler) SearchHandler(c *gin.Context) {
	results, err := h.searchService.Search(c.Query("q"))
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// MarkReadHandler handles POST /api/articles/:articleID/read.
func (h *APIHandler) MarkReadHandler(c *gin.Context) {
	articleID, ok := parseUintParam(c, "articleID")
	if !ok {
		return
	}
	var req models.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "user_id is required.", err)
		return
	}
	if err := h.progressService.MarkRead(req.UserID, articleID); err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// OverallProgressHandler handles GET /api/progress/:userID.
func (h *APIHandler) OverallProgressHandler(c *gin.Context) {
	progress, err := h.progressService.OverallProgress(c.Param("userID"))
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// CategoryProgressHandler handles GET /api/progress/:userID/category/:categoryID.
func (h *APIHandler) CategoryProgressHandler(c *gin.Context) {
	categoryID, ok := parseUintParam(c, "categoryID")
	if !ok {
		return
	}
	progress, err := h.progressService.CategoryProgress(c.Param("userID"), categoryID)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// RecentlyReadHandler handles GET /api/progress/:userID/recent?limit=N.
func (h *APIHandler) RecentlyReadHandler(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.SendJSONError(c, http.StatusBadRequest, "Invalid limit parameter.", err)
			return
		}
		limit = parsed
	}
	facts, err := h.progressService.RecentlyRead(c.Param("userID"), limit)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": facts, "count": len(facts)})
}

// AchievementEventHandler handles POST /api/achievements/event.
func (h *APIHandler) AchievementEventHandler(c *gin.Context) {
	var req models.AchievementEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "user_id and achievement_code are required.", err)
		return
	}
	result, err := h.achievementService.RecordEvent(req.UserID, req.AchievementCode, req.Delta, req.EventKey)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListAchievementsHandler handles GET /api/achievements/:userID and returns the
// user's progress rows joined with their definitions plus the reward total.
func (h *APIHandler) ListAchievementsHandler(c *gin.Context) {
	userID := c.Param("userID")
	achievements, err := h.achievementService.ListUserAchievements(userID)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	points, err := h.achievementService.TotalRewardPoints(userID)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"achievements": achievements, "total_reward_points": points})
}

// AchievementSeenHandler handles POST /api/achievements/:userID/:achievementID/seen.
func (h *APIHandler) AchievementSeenHandler(c *gin.Context) {
	achievementID, ok := parseUintParam(c, "achievementID")
	if !ok {
		return
	}
	if err := h.achievementService.MarkNotificationSeen(c.Param("userID"), achievementID); err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CompanionHandler handles POST /api/articles/:articleID/companion.
func (h *APIHandler) CompanionHandler(c *gin.Context) {
	articleID, ok := parseUintParam(c, "articleID")
	if !ok {
		return
	}
	companion, err := h.completionService.ArticleCompanion(articleID)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, companion)
}
