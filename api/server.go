package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"libercare/types"
)

// ArticleSource serves per-language article snapshots
type ArticleSource interface {
	Articles(ctx context.Context, lang types.Language) (snap types.Snapshot, stale bool, err error)
}

// KeywordSearcher runs the free-text article search
type KeywordSearcher interface {
	SearchKeyword(ctx context.Context, query string, lang types.Language) ([]types.SearchResult, error)
}

// RefreshStarter starts background refresh runs
type RefreshStarter interface {
	Start(lang types.Language) (string, error)
}

// StatusReporter reports refresh state
type StatusReporter interface {
	GetStatus() types.StatusResponse
}

// Services bundles the dependencies of the HTTP handlers
type Services struct {
	Articles ArticleSource
	Search   KeywordSearcher
	Refresh  RefreshStarter
	Status   StatusReporter
	// Resolve maps a requested language to a supported one
	Resolve func(types.Language) types.Language
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(svc Services) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	// Register resource routers
	RegisterHealthRoutes(r)
	RegisterArticleRoutes(r, svc)
	RegisterSearchRoutes(r, svc)
	RegisterRefreshRoutes(r, svc)
	RegisterPageRoutes(r, svc)
	return r
}

// language reads the lang query parameter and resolves it
func (svc Services) language(c *gin.Context) types.Language {
	lang := types.Language(c.Query("lang"))
	if svc.Resolve != nil {
		return svc.Resolve(lang)
	}
	return lang
}
