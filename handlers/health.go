package handlers

import (
	"net/http"

	"talkbid/utils"

	"github.com/gin-gonic/gin"
)

// HealthzHandler reports process liveness.
func HealthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadyzHandler reports the latest dependency health snapshot.
func ReadyzHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
