package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/formai-backend/internal/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondAppError maps a classified error onto an HTTP status. Auth errors
// from bad credentials or tokens are 401; auth errors from invalid
// registration input are 400.
func RespondAppError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	status := http.StatusInternalServerError

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindAuth:
		switch code {
		case "invalid_credentials", "invalid_token":
			status = http.StatusUnauthorized
		default:
			status = http.StatusBadRequest
		}
	case apperr.KindProvider:
		status = http.StatusBadGateway
	case apperr.KindTimeout:
		status = http.StatusGatewayTimeout
	}

	RespondError(c, status, code, err)
}
