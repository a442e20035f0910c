package feeds

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// rssDoc covers the RSS 2.0 shape the configured feeds emit.
type rssDoc struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// atomDoc covers the Atom shape.
type atomDoc struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	Links   []atomLink `xml:"link"`
	Updated string     `xml:"updated"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// entry is a parsed feed entry before normalization into a NewsItem.
type entry struct {
	Title       string
	Link        string
	PublishedAt time.Time
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseFeed decodes RSS 2.0 or Atom payloads into entries. Entries with
// no usable link are dropped; entries with no usable date get the fetch
// time so recency weighting still works.
func parseFeed(data []byte, fetchedAt time.Time) ([]entry, error) {
	// RSS first: the overwhelming majority of configured sources.
	var rss rssDoc
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		entries := make([]entry, 0, len(rss.Channel.Items))
		for _, it := range rss.Channel.Items {
			e := entry{
				Title:       strings.TrimSpace(it.Title),
				Link:        strings.TrimSpace(it.Link),
				PublishedAt: parseDate(it.PubDate),
			}
			if e.Link == "" || e.Title == "" {
				continue
			}
			if e.PublishedAt.IsZero() {
				e.PublishedAt = fetchedAt
			}
			entries = append(entries, e)
		}
		return entries, nil
	}

	var atom atomDoc
	if err := xml.Unmarshal(data, &atom); err == nil && len(atom.Entries) > 0 {
		entries := make([]entry, 0, len(atom.Entries))
		for _, en := range atom.Entries {
			e := entry{
				Title:       strings.TrimSpace(en.Title),
				PublishedAt: parseDate(en.Updated),
			}
			for _, l := range en.Links {
				if l.Rel == "" || l.Rel == "alternate" {
					e.Link = strings.TrimSpace(l.Href)
					break
				}
			}
			if e.Link == "" || e.Title == "" {
				continue
			}
			if e.PublishedAt.IsZero() {
				e.PublishedAt = fetchedAt
			}
			entries = append(entries, e)
		}
		return entries, nil
	}

	return nil, eris.New("feeds: payload is neither RSS nor Atom")
}
