// ABOUTME: Converts raw parsed feed data into the canonical Podcast and Episode models
// ABOUTME: Owns publish-date parsing and the description/summary fallback rule

package normalize

import (
	"strings"
	"time"

	"github.com/harper/podplay/internal/models"
	"github.com/harper/podplay/internal/parse"
)

// dateLayout is RFC 1123 with a numeric zone. The day may have one or two digits.
const dateLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

// zoneOffsets are the named zones RFC 822 defines. Go would parse any other
// abbreviation as a zero offset, so those dates are rejected instead.
var zoneOffsets = map[string]string{
	"GMT": "+0000",
	"UT":  "+0000",
	"UTC": "+0000",
	"Z":   "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

// Podcast builds a transient podcast from raw feed data.
// It returns nil when the feed has no usable episode list.
func Podcast(feedURL, imageURL string, raw *parse.FeedData) *models.Podcast {
	if raw == nil || len(raw.Episodes) == 0 {
		return nil
	}

	description := raw.Description
	if description == "" {
		description = raw.Summary
	}

	p := &models.Podcast{
		FeedURL:         feedURL,
		FeedTitle:       raw.Title,
		FeedDescription: description,
		ImageURL:        imageURL,
		LastUpdated:     raw.LastUpdated,
		Episodes:        make([]*models.Episode, 0, len(raw.Episodes)),
	}

	for _, re := range raw.Episodes {
		p.Episodes = append(p.Episodes, Episode(re))
	}

	return p
}

// Episode maps one raw feed item, defaulting absent fields to empty strings.
func Episode(raw parse.RawEpisode) *models.Episode {
	return &models.Episode{
		GUID:        value(raw.GUID),
		Title:       value(raw.Title),
		Description: value(raw.Description),
		MediaURL:    value(raw.URL),
		MimeType:    value(raw.Type),
		ReleaseDate: ParseDate(value(raw.PubDate)),
		Duration:    value(raw.Duration),
	}
}

// ParseDate parses an RFC 1123 publish date into UTC. It returns nil when the
// date is malformed or its zone has no known offset.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return nil
	}

	if offset, ok := zoneOffsets[strings.ToUpper(s[i+1:])]; ok {
		s = s[:i+1] + offset
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
