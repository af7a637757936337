package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/formai-backend/internal/repos"
	"github.com/yungbote/formai-backend/internal/requestdata"
	"github.com/yungbote/formai-backend/internal/services"
)

type UserHandler struct {
	userService        services.UserService
	dashboardService   services.DashboardService
	sportConfigService services.SportConfigService
	membershipRepo     repos.SportMembershipRepo
}

func NewUserHandler(
	userService services.UserService,
	dashboardService services.DashboardService,
	sportConfigService services.SportConfigService,
	membershipRepo repos.SportMembershipRepo,
) *UserHandler {
	return &UserHandler{
		userService:        userService,
		dashboardService:   dashboardService,
		sportConfigService: sportConfigService,
		membershipRepo:     membershipRepo,
	}
}

func (uh *UserHandler) Onboard(c *gin.Context) {
	var req struct {
		UserID     string `json:"user_id"`
		SportID    string `json:"sport_id"`
		SkillLevel string `json:"skill_level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	user, err := uh.userService.Onboard(c.Request.Context(), userID, req.SportID, req.SkillLevel)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"active_sport": user.CurrentSportID,
	})
}

// DashboardConfig bundles everything the home screen needs into one call:
// identity, active sport config and computed progression stats.
func (uh *UserHandler) DashboardConfig(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	user, err := uh.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	sportID := services.DefaultSportID
	if user.CurrentSportID != nil && *user.CurrentSportID != "" {
		sportID = *user.CurrentSportID
	}

	cfg, err := uh.sportConfigService.Get(c.Request.Context(), sportID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	stats := uh.dashboardService.GetStats(c.Request.Context(), user.ID, sportID)

	c.JSON(http.StatusOK, gin.H{
		"user_id":      user.ID,
		"username":     user.Username,
		"full_name":    user.FullName,
		"active_sport": sportID,
		"theme":        cfg.ThemeColor,
		"config":       cfg,
		"stats":        stats,
	})
}

func (uh *UserHandler) Me(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}

	user, err := uh.userService.GetByID(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	memberships, err := uh.membershipRepo.GetByUserIDs(c.Request.Context(), nil, []uuid.UUID{user.ID})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"sports": memberships,
	})
}

func (uh *UserHandler) ListSports(c *gin.Context) {
	configs, err := uh.sportConfigService.List(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sports": configs})
}
