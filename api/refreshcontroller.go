package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"libercare/orchestrator"
	"libercare/types"
)

// RegisterRefreshRoutes registers refresh and status endpoints.
func RegisterRefreshRoutes(r *gin.Engine, svc Services) {
	g := r.Group("/api")
	g.POST("/refresh", handleRefresh(svc))
	g.GET("/status", handleStatus(svc))
}

// handleRefresh starts a background refresh and returns 202 Accepted immediately.
// Query params: lang (optional, all languages when absent)
func handleRefresh(svc Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang types.Language
		if c.Query("lang") != "" {
			lang = svc.language(c)
		}

		runID, err := svc.Refresh.Start(lang)
		if errors.Is(err, orchestrator.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "refresh already running", "run_id": runID})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "refresh started", "run_id": runID})
	}
}

func handleStatus(svc Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Status.GetStatus())
	}
}
