package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterSearchRoutes registers the keyword search endpoint.
func RegisterSearchRoutes(r *gin.Engine, svc Services) {
	r.GET("/api/search", handleSearch(svc))
}

// handleSearch runs a keyword news search.
// Query params: q (required), lang (optional)
func handleSearch(svc Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
			return
		}
		lang := svc.language(c)

		results, err := svc.Search.SearchKeyword(c.Request.Context(), q, lang)
		if err != nil {
			log.Printf("search %q: %v", q, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"query":    q,
			"language": lang,
			"count":    len(results),
			"results":  results,
		})
	}
}
