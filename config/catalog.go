package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"libercare/types"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Denylist groups commercial terms and domain fragments that disqualify a result
type Denylist struct {
	Terms   []string `yaml:"terms"`
	Domains []string `yaml:"domains"`
}

// LanguageTable holds the topic queries and trusted source domains of one language
type LanguageTable struct {
	TrustedDomains []string           `yaml:"trusted_domains"`
	Queries        []types.TopicQuery `yaml:"queries"`
}

// Catalog is the static search configuration shipped with the binary
type Catalog struct {
	DefaultLanguage types.Language                   `yaml:"default_language"`
	TopicDenylist   Denylist                         `yaml:"topic_denylist"`
	KeywordDenylist Denylist                         `yaml:"keyword_denylist"`
	Images          map[types.Topic][]string         `yaml:"images"`
	Languages       map[types.Language]LanguageTable `yaml:"languages"`
}

// SupportedLanguages returns the languages served by the aggregator in display order
func SupportedLanguages() []types.Language {
	return []types.Language{types.LanguageFR, types.LanguageEN, types.LanguageRU}
}

// LoadCatalog decodes and validates the embedded catalog
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes a catalog document and validates it
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every language covers all topics and trusts at least one domain
func (c *Catalog) Validate() error {
	if _, ok := c.Languages[c.DefaultLanguage]; !ok {
		return fmt.Errorf("default language %q has no query table", c.DefaultLanguage)
	}
	for lang, table := range c.Languages {
		if len(table.TrustedDomains) == 0 {
			return fmt.Errorf("language %q has no trusted domains", lang)
		}
		seen := make(map[types.Topic]bool, len(table.Queries))
		for i, q := range table.Queries {
			if strings.TrimSpace(q.Query) == "" {
				return fmt.Errorf("language %q: query %d is empty", lang, i)
			}
			if seen[q.Topic] {
				return fmt.Errorf("language %q: topic %q listed twice", lang, q.Topic)
			}
			seen[q.Topic] = true
		}
		for _, topic := range types.AllTopics() {
			if !seen[topic] {
				return fmt.Errorf("language %q: missing topic %q", lang, topic)
			}
		}
	}
	return nil
}

// Resolve maps a requested language to one with a query table, falling back to the default
func (c *Catalog) Resolve(lang types.Language) types.Language {
	normalized := types.Language(strings.ToLower(strings.TrimSpace(string(lang))))
	if _, ok := c.Languages[normalized]; ok {
		return normalized
	}
	return c.DefaultLanguage
}

// Table returns the query table for lang, or the default language's table
func (c *Catalog) Table(lang types.Language) LanguageTable {
	return c.Languages[c.Resolve(lang)]
}

// AllImages returns the union of every topic's image pool in topic order,
// followed by pools of other topics sorted by name
func (c *Catalog) AllImages() []string {
	var all []string
	for _, topic := range types.AllTopics() {
		all = append(all, c.Images[topic]...)
	}
	var extra []types.Topic
	for topic := range c.Images {
		if !isKnownTopic(topic) {
			extra = append(extra, topic)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, topic := range extra {
		all = append(all, c.Images[topic]...)
	}
	return all
}

func isKnownTopic(t types.Topic) bool {
	for _, known := range types.AllTopics() {
		if known == t {
			return true
		}
	}
	return false
}
