package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Language is a supported locale code ("fr", "en", "ru")
type Language string

const (
	LanguageFR Language = "fr"
	LanguageEN Language = "en"
	LanguageRU Language = "ru"
)

// Topic is a health-content category used to diversify search results
type Topic string

const (
	TopicPlants     Topic = "plants"
	TopicNutrition  Topic = "nutrition"
	TopicMeditation Topic = "meditation"
	TopicYoga       Topic = "yoga"
	TopicMedicine   Topic = "medicine"
)

// AllTopics returns the topics in canonical order
func AllTopics() []Topic {
	return []Topic{TopicPlants, TopicNutrition, TopicMeditation, TopicYoga, TopicMedicine}
}

// TopicQuery is one topic-scoped search query of a language table
type TopicQuery struct {
	Topic Topic  `json:"topic" yaml:"topic"`
	Query string `json:"query" yaml:"query"`
}

// SearchResult is a single filtered search hit without a photo
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Article is a search result annotated with a representative stock image
type Article struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Photo   string `json:"photo"`
	Topic   Topic  `json:"topic,omitempty"`
}

// Snapshot is the top-level wrapper for an aggregated article set
type Snapshot struct {
	Language     Language  `json:"language"`
	FetchedAt    time.Time `json:"fetched_at"`
	ArticleCount int       `json:"article_count"`
	Articles     []Article `json:"articles"`
}

// DisplayTitle returns the title cut to limit runes with an ellipsis suffix
func (a Article) DisplayTitle(limit int) string {
	return TruncateTitle(a.Title, limit)
}

// TruncateTitle cuts s to n runes and appends "..." when it was longer
func TruncateTitle(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// GenerateID creates a short, stable ID from the input
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
