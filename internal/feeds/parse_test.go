package feeds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fetchedAt = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

const sampleRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example Wire</title>
    <item>
      <title>Fed raises rates by 25bps</title>
      <link>https://example.com/fed</link>
      <pubDate>Tue, 10 Mar 2026 10:30:00 +0000</pubDate>
    </item>
    <item>
      <title>No link entry</title>
      <pubDate>Tue, 10 Mar 2026 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Dateless entry</title>
      <link>https://example.com/dateless</link>
    </item>
  </channel>
</rss>`

const sampleAtom = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Tech</title>
  <entry>
    <title>Chipmaker announces new fab</title>
    <link rel="alternate" href="https://example.com/fab"/>
    <updated>2026-03-10T09:15:00Z</updated>
  </entry>
  <entry>
    <title>Self link only</title>
    <link rel="self" href="https://example.com/feed"/>
    <updated>2026-03-10T09:00:00Z</updated>
  </entry>
</feed>`

func TestParseFeed_RSS(t *testing.T) {
	entries, err := parseFeed([]byte(sampleRSS), fetchedAt)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Fed raises rates by 25bps", entries[0].Title)
	assert.Equal(t, "https://example.com/fed", entries[0].Link)
	assert.Equal(t, time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC), entries[0].PublishedAt)

	// Missing date falls back to fetch time.
	assert.Equal(t, fetchedAt, entries[1].PublishedAt)
}

func TestParseFeed_Atom(t *testing.T) {
	entries, err := parseFeed([]byte(sampleAtom), fetchedAt)
	require.NoError(t, err)
	// The self-link-only entry has no alternate link and is dropped.
	require.Len(t, entries, 1)

	assert.Equal(t, "Chipmaker announces new fab", entries[0].Title)
	assert.Equal(t, "https://example.com/fab", entries[0].Link)
}

func TestParseFeed_Garbage(t *testing.T) {
	_, err := parseFeed([]byte("<html><body>404</body></html>"), fetchedAt)
	assert.Error(t, err)
}

func TestParseDate_CommonLayouts(t *testing.T) {
	cases := []string{
		"Tue, 10 Mar 2026 10:30:00 +0000",
		"Tue, 10 Mar 2026 10:30:00 GMT",
		"2026-03-10T10:30:00Z",
	}
	for _, s := range cases {
		parsed := parseDate(s)
		assert.False(t, parsed.IsZero(), "layout should parse: %s", s)
		assert.Equal(t, 10, parsed.Day())
	}

	assert.True(t, parseDate("not a date").IsZero())
}
