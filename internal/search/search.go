// ABOUTME: Podcast directory search against the iTunes Search API
// ABOUTME: Returns feed URL, title and artwork for each show so a result can be subscribed to directly

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/harper/podplay/internal/fetch"
)

const (
	// DefaultEndpoint is the iTunes Search API.
	DefaultEndpoint = "https://itunes.apple.com/search"

	// DefaultLimit is the number of results requested when none is configured.
	DefaultLimit = 25

	// MaxLimit is the largest limit the API accepts.
	MaxLimit = 200
)

// ErrEmptyTerm is returned when the search term is blank.
var ErrEmptyTerm = errors.New("search term is empty")

// Result is one podcast found in the directory.
type Result struct {
	Name         string     `json:"name"`
	Artist       string     `json:"artist,omitempty"`
	FeedURL      string     `json:"feed_url"`
	ImageURL     string     `json:"image_url,omitempty"`
	Genre        string     `json:"genre,omitempty"`
	EpisodeCount int        `json:"episode_count,omitempty"`
	LastUpdated  *time.Time `json:"last_updated,omitempty"`
}

// Client searches the podcast directory.
type Client struct {
	fetcher  *fetch.Client
	endpoint string
	limit    int
	country  string
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the search endpoint. An empty value keeps the default.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithLimit sets the number of results requested, clamped to 1..MaxLimit.
func WithLimit(n int) Option {
	return func(c *Client) {
		c.limit = clampLimit(n)
	}
}

// WithCountry restricts results to a two-letter store country.
func WithCountry(country string) Option {
	return func(c *Client) {
		c.country = strings.ToLower(country)
	}
}

// New creates a search client. A nil fetch client uses fetch defaults.
func New(client *fetch.Client, opts ...Option) *Client {
	if client == nil {
		client = fetch.NewClient()
	}
	c := &Client{
		fetcher:  client,
		endpoint: DefaultEndpoint,
		limit:    DefaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// itunesResponse is the subset of the API response podplay reads.
type itunesResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []itunesResult `json:"results"`
}

type itunesResult struct {
	CollectionCensoredName string `json:"collectionCensoredName"`
	CollectionName         string `json:"collectionName"`
	ArtistName             string `json:"artistName"`
	FeedURL                string `json:"feedUrl"`
	ArtworkURL30           string `json:"artworkUrl30"`
	ArtworkURL60           string `json:"artworkUrl60"`
	ArtworkURL100          string `json:"artworkUrl100"`
	ArtworkURL600          string `json:"artworkUrl600"`
	PrimaryGenreName       string `json:"primaryGenreName"`
	TrackCount             int    `json:"trackCount"`
	ReleaseDate            string `json:"releaseDate"`
}

// Search looks up podcasts matching term. Shows without a public feed are skipped
// and each feed URL appears once.
func (c *Client) Search(ctx context.Context, term string) ([]Result, error) {
	return c.SearchLimit(ctx, term, c.limit)
}

// SearchLimit is Search with a per-call result limit, clamped like WithLimit.
func (c *Client) SearchLimit(ctx context.Context, term string, limit int) ([]Result, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}

	res, err := c.fetcher.Fetch(ctx, c.searchURL(term, clampLimit(limit)), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	var body itunesResponse
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := lo.FilterMap(body.Results, func(r itunesResult, _ int) (Result, bool) {
		if r.FeedURL == "" {
			return Result{}, false
		}
		return r.toResult(), true
	})

	return lo.UniqBy(results, func(r Result) string { return r.FeedURL }), nil
}

func (c *Client) searchURL(term string, limit int) string {
	q := url.Values{}
	q.Set("term", term)
	q.Set("media", "podcast")
	q.Set("entity", "podcast")
	q.Set("limit", strconv.Itoa(limit))
	if c.country != "" {
		q.Set("country", c.country)
	}
	return c.endpoint + "?" + q.Encode()
}

func (r itunesResult) toResult() Result {
	name := r.CollectionCensoredName
	if name == "" {
		name = r.CollectionName
	}

	out := Result{
		Name:         name,
		Artist:       r.ArtistName,
		FeedURL:      r.FeedURL,
		ImageURL:     firstNonEmpty(r.ArtworkURL600, r.ArtworkURL100, r.ArtworkURL60, r.ArtworkURL30),
		Genre:        r.PrimaryGenreName,
		EpisodeCount: r.TrackCount,
	}

	if t, err := time.Parse(time.RFC3339, r.ReleaseDate); err == nil {
		t = t.UTC()
		out.LastUpdated = &t
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func clampLimit(n int) int {
	switch {
	case n < 1:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}
