package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"libercare/search"
)

// RegisterArticleRoutes registers article-related routes.
func RegisterArticleRoutes(r *gin.Engine, svc Services) {
	r.GET("/api/articles", handleGetArticles(svc))
}

// handleGetArticles returns the recommended articles of a language.
// Query params: lang (fr|en|ru, optional)
func handleGetArticles(svc Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := svc.language(c)
		snap, stale, err := svc.Articles.Articles(c.Request.Context(), lang)
		if err != nil {
			log.Printf("articles %s: %v", lang, err)
			status := http.StatusBadGateway
			if errors.Is(err, search.ErrMissingAPIKey) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error(), "language": lang})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"language":   snap.Language,
			"fetched_at": snap.FetchedAt,
			"stale":      stale,
			"count":      snap.ArticleCount,
			"articles":   snap.Articles,
		})
	}
}
