package correlate

import (
	"strings"

	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/model"
)

// Topics is the injected keyword data the detector runs on.
type Topics struct {
	// Vocabulary is the fixed topic term set scanned for in cluster titles.
	Vocabulary []string

	// Relations maps a prediction-title keyword to its related news topics.
	Relations map[string][]string

	// MarketAliases maps a market symbol to headline words naming it.
	MarketAliases map[string][]string

	// SourceCategories maps a source name to its outlet category.
	SourceCategories map[string]model.SourceCategory
}

// TopicsFromTables assembles detector topic data from the config tables
// and the feed-derived source categories.
func TopicsFromTables(t *config.Tables, cats map[string]model.SourceCategory) Topics {
	return Topics{
		Vocabulary:       t.TopicVocabulary,
		Relations:        t.TopicRelations,
		MarketAliases:    t.MarketAliases,
		SourceCategories: cats,
	}
}

// extractTopicScores scans cluster primary titles for vocabulary terms and
// accumulates a topic -> activity score map, where each mentioning cluster
// contributes its velocity plus its source count.
func (d *Detector) extractTopicScores(events []model.ClusteredEvent) map[string]float64 {
	scores := make(map[string]float64)
	for _, ev := range events {
		title := strings.ToLower(ev.PrimaryTitle)
		velocity := 0.0
		if ev.Velocity != nil {
			velocity = ev.Velocity.SourcesPerHour
		}
		for _, topic := range d.topics.Vocabulary {
			if strings.Contains(title, topic) {
				scores[topic] += velocity + float64(ev.SourceCount)
			}
		}
	}
	return scores
}

// relatedTopics maps a prediction-market title to the news topics its
// relation table links it to.
func (d *Detector) relatedTopics(title string) []string {
	lower := strings.ToLower(title)
	seen := make(map[string]bool)
	var related []string
	for keyword, topics := range d.topics.Relations {
		if !strings.Contains(lower, keyword) {
			continue
		}
		for _, t := range topics {
			if !seen[t] {
				seen[t] = true
				related = append(related, t)
			}
		}
	}
	return related
}

// categoryOf returns the outlet category for a source name.
func (d *Detector) categoryOf(source string) model.SourceCategory {
	if c, ok := d.topics.SourceCategories[source]; ok {
		return c
	}
	return model.SourceOther
}
