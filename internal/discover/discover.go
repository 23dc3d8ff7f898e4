// ABOUTME: Podcast feed discovery from show pages or direct feed URLs
// ABOUTME: Tries the URL as a feed, then HTML alternate links, then common podcast feed paths

package discover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/harper/podplay/internal/fetch"
	"github.com/harper/podplay/internal/parse"
)

// Common feed paths to probe when other discovery methods fail
var commonFeedPaths = []string{
	"/feed.xml",
	"/podcast.xml",
	"/feed",
	"/feed/podcast",
	"/rss.xml",
	"/rss",
	"/podcast/rss",
	"/atom.xml",
	"/index.xml",
}

// Errors returned by discovery functions
var (
	ErrNoFeedFound = errors.New("no podcast feed found at URL")
	ErrInvalidURL  = errors.New("invalid URL")
)

// DiscoveredFeed represents a feed found during discovery.
type DiscoveredFeed struct {
	URL      string // Absolute URL of the feed
	Title    string // Feed title (from content or link element)
	ImageURL string // Artwork from the feed, or the page's og:image

	// Feed is the parsed document when the URL was verified by fetching it.
	Feed *parse.FeedData
}

// Discoverer finds feeds using a fetch client.
type Discoverer struct {
	client *fetch.Client
}

// New creates a Discoverer. A nil client uses fetch defaults.
func New(client *fetch.Client) *Discoverer {
	if client == nil {
		client = fetch.NewClient()
	}
	return &Discoverer{client: client}
}

// Discover finds a feed with a default Discoverer.
func Discover(ctx context.Context, inputURL string) (*DiscoveredFeed, error) {
	return New(nil).Discover(ctx, inputURL)
}

// Discover attempts to find a podcast feed from the given URL.
// It tries the following strategies in order:
//  1. Parse URL as a direct feed
//  2. Parse URL as HTML and extract <link rel="alternate"> headers
//  3. Probe common feed URL patterns
func (d *Discoverer) Discover(ctx context.Context, inputURL string) (*DiscoveredFeed, error) {
	parsedURL, err := url.Parse(inputURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host", ErrInvalidURL)
	}

	// Strategy 1: Try direct feed
	feed, body, err := d.tryDirectFeed(ctx, inputURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	if feed != nil {
		return feed, nil
	}

	page := scanPage(body, parsedURL)

	// Strategy 2: Follow feed links from HTML
	for _, candidate := range page.feeds {
		verified, _, verifyErr := d.tryDirectFeed(ctx, candidate.URL)
		if verifyErr != nil || verified == nil {
			continue
		}
		if verified.Title == "" {
			verified.Title = candidate.Title
		}
		if verified.ImageURL == "" {
			verified.ImageURL = page.image
		}
		return verified, nil
	}

	// Strategy 3: Probe common paths
	feed = d.probeCommonPaths(ctx, parsedURL)
	if feed != nil {
		if feed.ImageURL == "" {
			feed.ImageURL = page.image
		}
		return feed, nil
	}

	return nil, ErrNoFeedFound
}

// tryDirectFeed fetches the URL and parses it as a feed.
// A body that is not a feed yields a nil feed and the raw body for HTML scanning.
func (d *Discoverer) tryDirectFeed(ctx context.Context, feedURL string) (*DiscoveredFeed, []byte, error) {
	result, err := d.client.Fetch(ctx, feedURL, nil, nil)
	if err != nil {
		return nil, nil, err
	}

	parsed, parseErr := parse.Parse(result.Body)
	if parseErr != nil {
		return nil, result.Body, nil //nolint:nilerr // not a feed, caller scans the HTML
	}

	return &DiscoveredFeed{
		URL:      feedURL,
		Title:    parsed.Title,
		ImageURL: parsed.ImageURL,
		Feed:     parsed,
	}, result.Body, nil
}

// pageInfo is what discovery needs from an HTML page.
type pageInfo struct {
	feeds []DiscoveredFeed
	image string
}

// scanPage extracts alternate feed links and og:image from an HTML document.
func scanPage(htmlBody []byte, baseURL *url.URL) pageInfo {
	var info pageInfo

	doc, err := html.Parse(bytes.NewReader(htmlBody))
	if err != nil {
		return info
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "link":
				rel, linkType, href, title := attr(n, "rel"), attr(n, "type"), attr(n, "href"), attr(n, "title")
				if rel == "alternate" && isFeedContentType(linkType) && href != "" {
					if resolved, err := resolveURL(href, baseURL); err == nil {
						info.feeds = append(info.feeds, DiscoveredFeed{URL: resolved, Title: title})
					}
				}
			case "meta":
				if info.image == "" && attr(n, "property") == "og:image" {
					if resolved, err := resolveURL(attr(n, "content"), baseURL); err == nil {
						info.image = resolved
					}
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return info
}

// probeCommonPaths tries common feed URL patterns against the base URL
func (d *Discoverer) probeCommonPaths(ctx context.Context, baseURL *url.URL) *DiscoveredFeed {
	probeBase := &url.URL{
		Scheme: baseURL.Scheme,
		Host:   baseURL.Host,
	}

	for _, path := range commonFeedPaths {
		if ctx.Err() != nil {
			return nil
		}
		feed, _, err := d.tryDirectFeed(ctx, probeBase.String()+path)
		if err == nil && feed != nil {
			return feed
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// resolveURL resolves a potentially relative URL against a base URL
func resolveURL(href string, baseURL *url.URL) (string, error) {
	if href == "" {
		return "", errors.New("empty href")
	}
	refURL, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// isFeedContentType checks if the content type indicates a feed
func isFeedContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "rss") ||
		strings.Contains(contentType, "atom") ||
		strings.Contains(contentType, "xml")
}
