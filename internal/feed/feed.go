// ABOUTME: Feed service that downloads a feed URL and parses it into raw feed data
// ABOUTME: Any transport or parse failure is returned as an error to the caller

package feed

import (
	"context"
	"fmt"

	"github.com/harper/podplay/internal/fetch"
	"github.com/harper/podplay/internal/parse"
)

// Service resolves feed URLs to parsed feed data.
type Service struct {
	client *fetch.Client
}

// NewService creates a feed service. A nil client uses fetch defaults.
func NewService(client *fetch.Client) *Service {
	if client == nil {
		client = fetch.NewClient()
	}
	return &Service{client: client}
}

// GetFeed fetches and parses the feed at url.
func (s *Service) GetFeed(ctx context.Context, url string) (*parse.FeedData, error) {
	result, err := s.client.Fetch(ctx, url, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	// Unconditional requests should never see a 304, but guard against odd servers
	if result.NotModified || len(result.Body) == 0 {
		return nil, fmt.Errorf("fetch %s: empty response", url)
	}

	data, err := parse.Parse(result.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	return data, nil
}
