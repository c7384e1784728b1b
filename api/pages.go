package api

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"libercare/config"
	"libercare/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageText holds the localized strings of the article page
type pageText struct {
	Recommended       string
	Unavailable       string
	Stale             string
	SearchTitle       string
	SearchPlaceholder string
	SearchResults     string
	NoResults         string
}

var pageTexts = map[types.Language]pageText{
	types.LanguageFR: {
		Recommended:       "Articles Recommandés",
		Unavailable:       "Impossible de charger les articles. Veuillez réessayer plus tard.",
		Stale:             "Erreur de chargement des articles",
		SearchTitle:       "Recherche d'articles",
		SearchPlaceholder: "Rechercher des articles...",
		SearchResults:     "Résultats de recherche",
		NoResults:         "Aucun résultat trouvé",
	},
	types.LanguageEN: {
		Recommended:       "Recommended Articles",
		Unavailable:       "Unable to load articles. Please try again later.",
		Stale:             "Error loading articles",
		SearchTitle:       "Article Search",
		SearchPlaceholder: "Search articles...",
		SearchResults:     "Search Results",
		NoResults:         "No results found",
	},
	types.LanguageRU: {
		Recommended:       "Рекомендуемые статьи",
		Unavailable:       "Не удалось загрузить статьи. Пожалуйста, попробуйте позже.",
		Stale:             "Ошибка загрузки статей",
		SearchTitle:       "Поиск статей",
		SearchPlaceholder: "Поиск статей...",
		SearchResults:     "Результаты поиска",
		NoResults:         "Результаты не найдены",
	},
}

func textFor(lang types.Language) pageText {
	if t, ok := pageTexts[lang]; ok {
		return t
	}
	return pageTexts[types.LanguageFR]
}

type pageData struct {
	Language  types.Language
	Languages []types.Language
	Text      pageText
	Articles  []types.Article
	Stale     bool
	Query     string
	Results   []types.SearchResult
}

var pageFuncs = template.FuncMap{
	"truncate": func(s string) string { return types.TruncateTitle(s, config.TitleDisplayLimit) },
	"photo": func(s string) string {
		if s == "" {
			return config.PlaceholderPhoto
		}
		return s
	},
}

// RegisterPageRoutes registers the HTML article page.
func RegisterPageRoutes(r *gin.Engine, svc Services) {
	tmpl := template.Must(template.New("").Funcs(pageFuncs).ParseFS(templateFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)
	r.GET("/", handleIndex(svc))
}

// handleIndex renders article cards and, when q is set, keyword search results.
// Failures degrade to a localized notice instead of an error page.
func handleIndex(svc Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		lang := svc.language(c)
		data := pageData{
			Language:  lang,
			Languages: config.SupportedLanguages(),
			Text:      textFor(lang),
			Query:     strings.TrimSpace(c.Query("q")),
		}

		snap, stale, err := svc.Articles.Articles(ctx, lang)
		if err != nil {
			log.Printf("page articles %s: %v", lang, err)
		} else {
			data.Articles = snap.Articles
			data.Stale = stale
		}

		if data.Query != "" {
			results, err := svc.Search.SearchKeyword(ctx, data.Query, lang)
			if err != nil {
				log.Printf("page search %q: %v", data.Query, err)
			}
			data.Results = results
		}

		c.HTML(http.StatusOK, "index.html", data)
	}
}
