// ABOUTME: Podcast feed parsing using the gofeed library
// ABOUTME: Converts gofeed.Feed into raw FeedData where every optional episode field may be absent

package parse

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
	"golang.org/x/net/html/charset"
)

// FeedData is the raw, un-normalized content of a podcast feed.
type FeedData struct {
	Title       string
	Description string
	Summary     string
	LastUpdated string
	ImageURL    string
	Episodes    []RawEpisode // nil when the feed carries no items
}

// RawEpisode is a single feed item. Nil fields were absent in the source document.
type RawEpisode struct {
	GUID        *string
	Title       *string
	Description *string
	URL         *string
	Type        *string
	PubDate     *string
	Duration    *string
}

// Parse parses RSS or Atom feed data and returns the raw feed fields.
func Parse(data []byte) (*FeedData, error) {
	parser := gofeed.NewParser()
	parser.RSSTranslator = &rssTranslator{}
	feed, err := parser.ParseString(string(data))
	if err != nil {
		return nil, err
	}

	if feed.FeedType == "rss" && feed.Description == "" {
		feed.Description = rawChannelDescription(data)
	}

	parsed := &FeedData{
		Title:       strings.TrimSpace(feed.Title),
		Description: feed.Description,
		LastUpdated: feed.Updated,
	}

	if parsed.LastUpdated == "" {
		parsed.LastUpdated = feed.Published
	}

	if feed.ITunesExt != nil {
		parsed.Summary = feed.ITunesExt.Summary
	}

	// Prefer the channel image, then iTunes artwork
	if feed.Image != nil && feed.Image.URL != "" {
		parsed.ImageURL = feed.Image.URL
	} else if feed.ITunesExt != nil {
		parsed.ImageURL = feed.ITunesExt.Image
	}

	if len(feed.Items) == 0 {
		return parsed, nil
	}

	parsed.Episodes = make([]RawEpisode, 0, len(feed.Items))
	for _, item := range feed.Items {
		parsed.Episodes = append(parsed.Episodes, convertItem(item))
	}

	return parsed, nil
}

// rssTranslator keeps the channel description as written. The default
// translator substitutes itunes:summary when it is empty.
type rssTranslator struct {
	gofeed.DefaultRSSTranslator
}

func (t *rssTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	translated, err := t.DefaultRSSTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}
	if source, ok := feed.(*rss.Feed); ok {
		translated.Description = source.Description
	}
	return translated, nil
}

type channelElement struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type rssDocument struct {
	Channel struct {
		Descriptions []channelElement `xml:"description"`
	} `xml:"channel"`
}

// rawChannelDescription returns the untrimmed text of the channel's
// <description> element. gofeed trims text, which turns a whitespace-only
// description into an empty one.
func rawChannelDescription(data []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity
	decoder.CharsetReader = charset.NewReaderLabel

	var doc rssDocument
	if err := decoder.Decode(&doc); err != nil {
		return ""
	}
	for _, el := range doc.Channel.Descriptions {
		if el.XMLName.Space == "" {
			return el.Value
		}
	}
	return ""
}

func convertItem(item *gofeed.Item) RawEpisode {
	episode := RawEpisode{
		GUID:        optional(item.GUID),
		Title:       optional(item.Title),
		Description: optional(item.Description),
		PubDate:     optional(item.Published),
	}

	// Fall back to full content when the item has no description
	if episode.Description == nil {
		episode.Description = optional(item.Content)
	}

	if len(item.Enclosures) > 0 {
		enclosure := item.Enclosures[0]
		episode.URL = optional(enclosure.URL)
		episode.Type = optional(enclosure.Type)
	}

	if item.ITunesExt != nil {
		episode.Duration = optional(item.ITunesExt.Duration)
	}

	return episode
}

// optional returns nil for an empty string so absence survives the conversion.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
