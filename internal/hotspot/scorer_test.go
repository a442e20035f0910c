package hotspot

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/model"
)

var hsNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testScorer() *Scorer {
	return NewScorer(&config.Tables{
		ConflictTopics: map[string][]string{
			"gaza":    {"gaza", "hamas", "idf"},
			"ukraine": {"ukraine", "kyiv", "donbas"},
		},
	})
}

func telAviv() model.Hotspot {
	return model.Hotspot{
		ID:       "telaviv",
		Name:     "Tel Aviv",
		Keywords: []string{"israel", "gaza", "idf", "hamas"},
		Agencies: []string{"idf", "mossad"},
	}
}

func washington() model.Hotspot {
	return model.Hotspot{
		ID:       "dc",
		Name:     "Washington DC",
		Keywords: []string{"white house", "pentagon", "congress", "washington"},
		Agencies: []string{"cia", "nsa"},
	}
}

func newsAt(title string, age time.Duration) model.NewsItem {
	return model.NewsItem{Title: title, Link: title, PublishedAt: hsNow.Add(-age)}
}

func TestUpdateActivity_NoMatchesIsMonitoring(t *testing.T) {
	s := testScorer()
	hotspots := s.UpdateActivity([]model.Hotspot{telAviv()}, []model.NewsItem{
		newsAt("Quarterly earnings beat estimates", time.Hour),
	}, hsNow)

	act := hotspots[0].Activity
	assert.Equal(t, model.ActivityLow, act.Level)
	assert.Equal(t, "Monitoring", act.Status)
	assert.Equal(t, 0, act.MatchedCount)
	assert.Equal(t, 0.0, act.Score)
}

func TestUpdateActivity_SingleMentionIsRecentMentions(t *testing.T) {
	s := testScorer()
	hotspots := s.UpdateActivity([]model.Hotspot{telAviv()}, []model.NewsItem{
		newsAt("Gaza aid convoy crosses border", 30*time.Hour),
	}, hsNow)

	act := hotspots[0].Activity
	assert.Equal(t, model.ActivityLow, act.Level)
	assert.Equal(t, "Recent mentions", act.Status)
	assert.Equal(t, 1, act.MatchedCount)
}

func TestUpdateActivity_BreakingAlertGoesHigh(t *testing.T) {
	s := testScorer()
	news := []model.NewsItem{
		newsAt("Gaza ceasefire talks continue", time.Hour*2),
		newsAt("IDF statement on Gaza operation", time.Hour*3),
		newsAt("Hamas responds to proposal", time.Hour*4),
		{Title: "BREAKING: strikes reported in Gaza", Link: "b1", PublishedAt: hsNow.Add(-10 * time.Minute), IsAlert: true},
		newsAt("Oil futures slip ahead of opec meeting", time.Hour),
	}

	hotspots := s.UpdateActivity([]model.Hotspot{telAviv()}, news, hsNow)

	act := hotspots[0].Activity
	assert.Equal(t, model.ActivityHigh, act.Level)
	assert.Equal(t, "BREAKING NEWS", act.Status)
	assert.True(t, act.HasBreaking)
	assert.Equal(t, 4, act.MatchedCount)
}

func TestUpdateActivity_FourMentionsHighWithoutAlert(t *testing.T) {
	s := testScorer()
	news := []model.NewsItem{
		newsAt("Gaza ceasefire talks continue", 30*time.Hour),
		newsAt("IDF statement issued overnight", 31*time.Hour),
		newsAt("Hamas negotiators arrive", 32*time.Hour),
		newsAt("Israel cabinet meets", 33*time.Hour),
	}

	hotspots := s.UpdateActivity([]model.Hotspot{telAviv()}, news, hsNow)

	act := hotspots[0].Activity
	assert.Equal(t, model.ActivityHigh, act.Level)
	assert.Equal(t, "High activity", act.Status)
	assert.False(t, act.HasBreaking)
}

func TestUpdateActivity_TwoMentionsElevated(t *testing.T) {
	s := testScorer()
	news := []model.NewsItem{
		newsAt("Gaza border crossing reopens", 30*time.Hour),
		newsAt("Israel trade data released", 31*time.Hour),
	}

	hotspots := s.UpdateActivity([]model.Hotspot{telAviv()}, news, hsNow)
	assert.Equal(t, model.ActivityElevated, hotspots[0].Activity.Level)
}

func TestUpdateActivity_RecencyRaisesScore(t *testing.T) {
	s := testScorer()

	fresh := s.score(telAviv(), []model.NewsItem{newsAt("Gaza update", 30*time.Minute)}, hsNow)
	stale := s.score(telAviv(), []model.NewsItem{newsAt("Gaza update", 30*time.Hour)}, hsNow)

	// Same single match; the fresh item carries the <1h bonus.
	assert.Equal(t, fresh.MatchedCount, stale.MatchedCount)
	assert.InDelta(t, 2.0, fresh.Score-stale.Score, 0.001)
}

func TestUpdateActivity_MoreMatchesNeverLowersScore(t *testing.T) {
	s := testScorer()
	base := []model.NewsItem{newsAt("Gaza aid update", 30*time.Hour)}
	more := append(append([]model.NewsItem(nil), base...), newsAt("IDF press briefing", 30*time.Hour))

	a := s.score(telAviv(), base, hsNow)
	b := s.score(telAviv(), more, hsNow)

	assert.GreaterOrEqual(t, b.Score, a.Score)
	assert.GreaterOrEqual(t, b.MatchedCount, a.MatchedCount)
}

func TestRelatedNews_RankedByMatchCountAndCapped(t *testing.T) {
	s := testScorer()

	var news []model.NewsItem
	for i := 0; i < 7; i++ {
		news = append(news, newsAt(fmt.Sprintf("Israel update %d", i), time.Duration(i)*time.Hour))
	}
	news = append(news, newsAt("IDF and Hamas clash in Gaza as Israel responds", 30*time.Minute))

	related := s.RelatedNews(telAviv(), news, hsNow)

	require.Len(t, related, 5)
	// The four-keyword headline outranks the single-keyword ones.
	assert.Contains(t, related[0].Title, "IDF and Hamas")
}

func TestRelatedNews_CrossTopicHeadlineExcluded(t *testing.T) {
	s := testScorer()

	news := []model.NewsItem{
		newsAt("Gaza ceasefire talks stall as Pentagon briefs allies", 2*time.Hour),
		newsAt("White House outlines budget priorities", 3*time.Hour),
	}

	related := s.RelatedNews(washington(), news, hsNow)

	// The Gaza-dominant headline matched "pentagon" but carries no
	// strong local marker, so it must not surface under dc.
	require.Len(t, related, 1)
	assert.Contains(t, related[0].Title, "White House")
}

func TestRelatedNews_LocalMarkerOverridesSuppression(t *testing.T) {
	s := testScorer()

	news := []model.NewsItem{
		newsAt("CIA assessment of Gaza talks briefed to Pentagon leaders", 2*time.Hour),
	}

	related := s.RelatedNews(washington(), news, hsNow)

	// "cia" is a dc agency: the cross-topic mention stays in.
	require.Len(t, related, 1)
}

func TestRelatedNews_OwnTopicNeverSuppressed(t *testing.T) {
	s := testScorer()

	news := []model.NewsItem{
		newsAt("Gaza ceasefire talks stall", 2*time.Hour),
	}

	// "gaza" is one of Tel Aviv's own keywords, so the gaza conflict
	// topic is not foreign to it.
	related := s.RelatedNews(telAviv(), news, hsNow)
	require.Len(t, related, 1)
}

func TestGeoJSON_OneFeaturePerHotspot(t *testing.T) {
	h := telAviv()
	h.Lat = 32.0853
	h.Lon = 34.7818
	h.Activity = model.HotspotActivity{Level: model.ActivityHigh, Status: "BREAKING NEWS", HasBreaking: true}

	fc := GeoJSON([]model.Hotspot{h})

	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	assert.Equal(t, "telaviv", f.ID)
	assert.Equal(t, []float64{34.7818, 32.0853}, f.Geometry.FlatCoords())
	assert.Equal(t, "high", f.Properties["level"])
	assert.Equal(t, true, f.Properties["has_breaking"])
}
