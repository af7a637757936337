package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/formai-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		Email      string `json:"email"`
		FullName   string `json:"full_name"`
		SportID    string `json:"sport_id"`
		SkillLevel string `json:"skill_level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := ah.authService.Register(c.Request.Context(), services.RegisterInput{
		Username:   req.Username,
		Password:   req.Password,
		Email:      req.Email,
		FullName:   req.FullName,
		SportID:    req.SportID,
		SkillLevel: req.SkillLevel,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}

	expiresIn := int(ah.authService.GetAccessTTL().Seconds())
	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"user_id":          user.ID,
		"current_sport_id": user.CurrentSportID,
		"access_token":     token,
		"expires_in":       expiresIn,
	})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	expiresIn := int(ah.authService.GetAccessTTL().Seconds())
	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"user_id":          user.ID,
		"current_sport_id": user.CurrentSportID,
		"access_token":     token,
		"expires_in":       expiresIn,
	})
}
