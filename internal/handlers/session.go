package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/formai-backend/internal/services"
	"github.com/yungbote/formai-backend/internal/types"
)

type SessionHandler struct {
	analysisService services.AnalysisService
}

func NewSessionHandler(analysisService services.AnalysisService) *SessionHandler {
	return &SessionHandler{analysisService: analysisService}
}

type analyzeResponse struct {
	types.AnalysisResult
	Notices []services.Notice `json:"notices,omitempty"`
}

// AnalyzeDeep accepts a multipart video clip and returns the coaching
// verdict. Degradations that did not stop the analysis ride along as
// notices.
func (sh *SessionHandler) AnalyzeDeep(c *gin.Context) {
	userID, err := uuid.Parse(c.PostForm("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	sportID := c.PostForm("sport_id")
	if sportID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sport_id is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a video file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	video, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}

	result, notices, err := sh.analysisService.AnalyzeDeep(
		c.Request.Context(), userID, sportID, video, fileHeader.Filename, contentType)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{AnalysisResult: result, Notices: notices})
}
