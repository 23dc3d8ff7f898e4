// ABOUTME: Tests for feed normalization into Podcast and Episode models
// ABOUTME: Covers nil feeds, description fallback, default fields, and date parsing

package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/podplay/internal/parse"
)

func str(s string) *string { return &s }

func TestPodcast_NilAndEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  *parse.FeedData
	}{
		{"nil feed", nil},
		{"no episode list", &parse.FeedData{Title: "Show"}},
		{"empty episode list", &parse.FeedData{Title: "Show", Episodes: []parse.RawEpisode{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Podcast("https://example.com/feed", "", tt.raw))
		})
	}
}

func TestPodcast_DescriptionFallback(t *testing.T) {
	tests := []struct {
		name        string
		description string
		summary     string
		want        string
	}{
		{"description wins", "desc", "sum", "desc"},
		{"empty description uses summary", "", "sum", "sum"},
		{"whitespace description kept", "  ", "sum", "  "},
		{"both empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &parse.FeedData{
				Description: tt.description,
				Summary:     tt.summary,
				Episodes:    []parse.RawEpisode{{GUID: str("a")}},
			}
			p := Podcast("https://example.com/feed", "", raw)
			require.NotNil(t, p)
			assert.Equal(t, tt.want, p.FeedDescription)
		})
	}
}

func TestPodcast_Fields(t *testing.T) {
	raw := &parse.FeedData{
		Title:       "Show",
		Description: "About the show",
		LastUpdated: "Mon, 02 Jan 2006 15:04:05 -0700",
		Episodes: []parse.RawEpisode{
			{
				GUID:        str("ep-1"),
				Title:       str("One"),
				Description: str("First"),
				URL:         str("https://example.com/1.mp3"),
				Type:        str("audio/mpeg"),
				PubDate:     str("Mon, 02 Jan 2006 15:04:05 -0700"),
				Duration:    str("12:34"),
			},
			{},
		},
	}

	p := Podcast("https://example.com/feed", "https://example.com/art.png", raw)
	require.NotNil(t, p)

	assert.Equal(t, "https://example.com/feed", p.FeedURL)
	assert.Equal(t, "Show", p.FeedTitle)
	assert.Equal(t, "https://example.com/art.png", p.ImageURL)
	assert.Equal(t, raw.LastUpdated, p.LastUpdated)
	assert.Zero(t, p.ID)
	assert.False(t, p.Subscribed)
	require.Len(t, p.Episodes, 2)

	first := p.Episodes[0]
	assert.Equal(t, "ep-1", first.GUID)
	assert.Equal(t, "One", first.Title)
	assert.Equal(t, "First", first.Description)
	assert.Equal(t, "https://example.com/1.mp3", first.MediaURL)
	assert.Equal(t, "audio/mpeg", first.MimeType)
	assert.Equal(t, "12:34", first.Duration)
	require.NotNil(t, first.ReleaseDate)
	assert.True(t, first.ReleaseDate.Equal(time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC)))

	empty := p.Episodes[1]
	assert.Equal(t, "", empty.GUID)
	assert.Equal(t, "", empty.Title)
	assert.Equal(t, "", empty.Description)
	assert.Equal(t, "", empty.MediaURL)
	assert.Equal(t, "", empty.MimeType)
	assert.Equal(t, "", empty.Duration)
	assert.Nil(t, empty.ReleaseDate)
}

func TestParseDate(t *testing.T) {
	march5 := func(hour int) time.Time { return time.Date(2024, 3, 5, hour, 0, 0, 0, time.UTC) }

	tests := []struct {
		input string
		want  *time.Time
	}{
		{"Mon, 02 Jan 2006 15:04:05 -0700", ptr(time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC))},
		{"Mon, 02 Jan 2006 15:04:05 GMT", ptr(time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC))},
		{"  Tue, 10 Jun 2003 04:00:00 +0000  ", ptr(time.Date(2003, 6, 10, 4, 0, 0, 0, time.UTC))},
		{"Tue, 5 Mar 2024 10:00:00 +0000", ptr(march5(10))},
		{"Tue, 05 Mar 2024 10:00:00 PST", ptr(march5(18))},
		{"Tue, 5 Mar 2024 10:00:00 PDT", ptr(march5(17))},
		{"Tue, 05 Mar 2024 10:00:00 EST", ptr(march5(15))},
		{"Tue, 05 Mar 2024 10:00:00 EDT", ptr(march5(14))},
		{"Tue, 05 Mar 2024 10:00:00 CST", ptr(march5(16))},
		{"Tue, 05 Mar 2024 10:00:00 MDT", ptr(march5(16))},
		{"Tue, 05 Mar 2024 10:00:00 UT", ptr(march5(10))},
		{"Tue, 05 Mar 2024 10:00:00 Z", ptr(march5(10))},
		{"Tue, 05 Mar 2024 10:00:00 CET", nil},
		{"Tue, 05 Mar 2024 10:00:00 AEST", nil},
		{"Tue, 05 Mar 2024 10:00:00", nil},
		{"2006-01-02T15:04:05Z", nil},
		{"yesterday", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseDate(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s, want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }
