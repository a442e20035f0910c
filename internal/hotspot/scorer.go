// Package hotspot scores fixed geographic points of interest against the
// live news corpus with keyword matching, recency decay, and breaking-news
// weighting.
package hotspot

import (
	"sort"
	"strings"
	"time"

	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/model"
)

const (
	matchWeight   = 1.5
	breakingBonus = 3.0
	maxRelated    = 5
)

// Scorer computes hotspot activity levels. The conflict-topic table drives
// cross-topic suppression in drill-down.
type Scorer struct {
	conflictTopics map[string][]string
}

// NewScorer creates a scorer from the injected keyword tables.
func NewScorer(tables *config.Tables) *Scorer {
	return &Scorer{conflictTopics: tables.ConflictTopics}
}

// matchCount counts how many hotspot keywords appear in the title.
func matchCount(h model.Hotspot, lowerTitle string) int {
	n := 0
	for _, kw := range h.Keywords {
		if strings.Contains(lowerTitle, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}

// recencyBonus rewards fresh items in three bands; nothing beyond 24h.
func recencyBonus(age time.Duration) float64 {
	switch {
	case age < time.Hour:
		return 2.0
	case age < 6*time.Hour:
		return 1.0
	case age < 24*time.Hour:
		return 0.5
	default:
		return 0
	}
}

// UpdateActivity recomputes the derived activity state of every hotspot
// from the current corpus. Absent matches silently revert a hotspot to
// baseline; the function is total and never fails.
func (s *Scorer) UpdateActivity(hotspots []model.Hotspot, news []model.NewsItem, now time.Time) []model.Hotspot {
	for i := range hotspots {
		hotspots[i].Activity = s.score(hotspots[i], news, now)
	}
	return hotspots
}

func (s *Scorer) score(h model.Hotspot, news []model.NewsItem, now time.Time) model.HotspotActivity {
	var act model.HotspotActivity

	for _, item := range news {
		matches := matchCount(h, strings.ToLower(item.Title))
		if matches == 0 {
			continue
		}

		act.MatchedCount++
		act.Score += float64(matches) * matchWeight
		if item.IsAlert {
			act.HasBreaking = true
			act.Score += breakingBonus
		}
		act.Score += recencyBonus(item.Age(now))
	}

	switch {
	case act.HasBreaking:
		act.Level = model.ActivityHigh
		act.Status = "BREAKING NEWS"
	case act.MatchedCount >= 4 || act.Score >= 10:
		act.Level = model.ActivityHigh
		act.Status = "High activity"
	case act.MatchedCount >= 2 || act.Score >= 4:
		act.Level = model.ActivityElevated
		act.Status = "Elevated activity"
	case act.MatchedCount >= 1:
		act.Level = model.ActivityLow
		act.Status = "Recent mentions"
	default:
		act.Level = model.ActivityLow
		act.Status = "Monitoring"
	}

	return act
}

// RelatedNews returns the top matching items for a hotspot's drill-down,
// ranked by match count. An item that also mentions a major unrelated
// conflict topic is excluded unless it carries a strong local marker: the
// hotspot's name or one of its agencies.
func (s *Scorer) RelatedNews(h model.Hotspot, news []model.NewsItem, now time.Time) []model.NewsItem {
	type ranked struct {
		item    model.NewsItem
		matches int
	}

	var matched []ranked
	for _, item := range news {
		lower := strings.ToLower(item.Title)
		matches := matchCount(h, lower)
		if matches == 0 {
			continue
		}
		if s.crossTopicDominated(h, lower) && !hasLocalMarker(h, lower) {
			continue
		}
		matched = append(matched, ranked{item: item, matches: matches})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].matches != matched[j].matches {
			return matched[i].matches > matched[j].matches
		}
		return matched[i].item.PublishedAt.After(matched[j].item.PublishedAt)
	})

	if len(matched) > maxRelated {
		matched = matched[:maxRelated]
	}
	items := make([]model.NewsItem, len(matched))
	for i, r := range matched {
		items[i] = r.item
	}
	return items
}

// crossTopicDominated reports whether the title mentions a conflict topic
// foreign to this hotspot. A topic is considered the hotspot's own when
// any of its markers appears in the hotspot keyword set.
func (s *Scorer) crossTopicDominated(h model.Hotspot, lowerTitle string) bool {
	for _, markers := range s.conflictTopics {
		if topicBelongsTo(h, markers) {
			continue
		}
		for _, marker := range markers {
			if strings.Contains(lowerTitle, strings.ToLower(marker)) {
				return true
			}
		}
	}
	return false
}

func topicBelongsTo(h model.Hotspot, markers []string) bool {
	for _, marker := range markers {
		for _, kw := range h.Keywords {
			if strings.EqualFold(marker, kw) {
				return true
			}
		}
	}
	return false
}

// hasLocalMarker reports whether the title names the hotspot itself or one
// of its listed agencies.
func hasLocalMarker(h model.Hotspot, lowerTitle string) bool {
	if strings.Contains(lowerTitle, strings.ToLower(h.Name)) {
		return true
	}
	for _, agency := range h.Agencies {
		if strings.Contains(lowerTitle, strings.ToLower(agency)) {
			return true
		}
	}
	return false
}
