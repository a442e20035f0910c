package config

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/argusint/argus-cli/internal/model"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

//go:embed hotspots.yaml
var defaultHotspotsYAML []byte

// Tables holds the hand-authored keyword data the engines run on. Keeping
// these as injected data rather than constants lets deployments swap
// vocabularies without a rebuild.
type Tables struct {
	// Stopwords are dropped during title normalization.
	Stopwords []string `yaml:"stopwords"`

	// SentimentLexicon maps lowercase words to tone weights in [-1, 1].
	SentimentLexicon map[string]float64 `yaml:"sentiment_lexicon"`

	// TopicVocabulary is the fixed set of macro/geopolitical/financial
	// terms scanned for in cluster titles.
	TopicVocabulary []string `yaml:"topic_vocabulary"`

	// TopicRelations maps a prediction-market title keyword to the news
	// topics that would cover it.
	TopicRelations map[string][]string `yaml:"topic_relations"`

	// MarketAliases maps a market symbol to name words to look for in
	// headlines.
	MarketAliases map[string][]string `yaml:"market_aliases"`

	// AlertKeywords flag an item as breaking when present in its title.
	AlertKeywords []string `yaml:"alert_keywords"`

	// ConflictTopics are major ongoing conflicts used for cross-topic
	// suppression in hotspot drill-down: topic id -> its marker keywords.
	ConflictTopics map[string][]string `yaml:"conflict_topics"`
}

// LoadTables reads keyword tables from path, falling back to the embedded
// defaults when path is empty.
func LoadTables(path string) (*Tables, error) {
	data := defaultTablesYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "config: read tables %s", path)
		}
		data = b
	}

	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal tables")
	}
	return &t, nil
}

// LoadHotspots reads hotspot definitions from path, falling back to the
// embedded defaults when path is empty.
func LoadHotspots(path string) ([]model.Hotspot, error) {
	data := defaultHotspotsYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "config: read hotspots %s", path)
		}
		data = b
	}

	var wrapper struct {
		Hotspots []model.Hotspot `yaml:"hotspots"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal hotspots")
	}
	return wrapper.Hotspots, nil
}
