package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookify/utils"
)

// HealthHandler reports the latest dependency health snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"deps":   status,
	})
}
