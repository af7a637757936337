package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "active", "system": "FormAI Brain"})
}

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
