package config

import "time"

// Aggregation Constants
const (
	// MaxArticles caps the aggregated article set
	MaxArticles = 5

	// TopicResultCount is the number of raw results requested per topic query
	TopicResultCount = 30

	// KeywordResultCount is the number of raw results requested by keyword search
	KeywordResultCount = 10

	// CacheWindow is the freshness window of cached search results and snapshots
	CacheWindow = 12 * time.Hour
)

// Search Service Constants
const (
	// SearchURL is the default search API endpoint
	SearchURL = "https://google.serper.dev/search"

	// SearchTimeout bounds every outbound search request
	SearchTimeout = 10 * time.Second

	// NewsScope restricts a search to news results
	NewsScope = "nws"
)

// Presentation Constants
const (
	// TitleDisplayLimit is the number of title runes shown on an article card
	TitleDisplayLimit = 90

	// PlaceholderPhoto is shown when an article carries no photo
	PlaceholderPhoto = "https://via.placeholder.com/400x300"
)

// Refresh Constants
const (
	// DefaultRefreshCron refreshes every language twice a day
	DefaultRefreshCron = "0 */12 * * *"

	// RefreshTimeout bounds a whole refresh run across all languages
	RefreshTimeout = 2 * time.Minute

	// MaxStatusLogs is the size of the refresh log ring buffer
	MaxStatusLogs = 50
)

// Kafka Constants
const (
	DefaultKafkaTopic   = "article-refresh-requests"
	DefaultKafkaGroupID = "libercare-refresh-group"
)
