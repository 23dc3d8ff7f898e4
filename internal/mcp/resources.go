// ABOUTME: MCP resource providers for podplay
// ABOUTME: Exposes read-only views of subscriptions and library statistics

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"

	"github.com/harper/podplay/internal/models"
	"github.com/harper/podplay/internal/storage"
)

const (
	podcastsURI = "podplay://podcasts"
	statsURI    = "podplay://stats"
)

// ResourceData is the standard response format for all resources.
type ResourceData struct {
	Metadata ResourceMetadata  `json:"metadata"`
	Data     interface{}       `json:"data"`
	Links    map[string]string `json:"links"`
}

// ResourceMetadata contains metadata about the resource response.
type ResourceMetadata struct {
	Timestamp   time.Time `json:"timestamp"`
	Count       int       `json:"count"`
	ResourceURI string    `json:"resource_uri"`
}

// StatsData is the payload of the stats resource.
type StatsData struct {
	storage.Stats
	Latest *EpisodeOutput `json:"latest_episode,omitempty"`
}

func (s *Server) registerResources() {
	s.registerPodcastsResource()
	s.registerStatsResource()
}

func (s *Server) registerPodcastsResource() {
	s.mcpServer.AddResource(
		mcp.Resource{
			URI:         podcastsURI,
			Name:        "Subscribed Podcasts",
			Description: "All subscribed podcasts in subscription order with feed URL, title, artwork and last-updated value",
			MIMEType:    "application/json",
		},
		s.readPodcastsResource,
	)
}

func (s *Server) readPodcastsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	podcasts, err := s.repo.Podcasts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list podcasts: %w", err)
	}

	outputs := lo.Map(podcasts, func(p *models.Podcast, _ int) PodcastOutput {
		return podcastOutput(p)
	})

	return resourceContents(request.Params.URI, ResourceData{
		Metadata: ResourceMetadata{
			Timestamp:   time.Now(),
			Count:       len(outputs),
			ResourceURI: podcastsURI,
		},
		Data:  outputs,
		Links: map[string]string{"stats": statsURI},
	})
}

func (s *Server) registerStatsResource() {
	s.mcpServer.AddResource(
		mcp.Resource{
			URI:         statsURI,
			Name:        "Library Statistics",
			Description: "Counts of subscribed podcasts and stored episodes, plus the most recently released episode",
			MIMEType:    "application/json",
		},
		s.readStatsResource,
	)
}

func (s *Server) readStatsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate stats: %w", err)
	}

	data := StatsData{Stats: *stats}

	one := 1
	latest, err := s.store.ListEpisodes(ctx, &storage.EpisodeFilter{Limit: &one})
	if err != nil {
		return nil, fmt.Errorf("failed to load latest episode: %w", err)
	}
	if len(latest) > 0 {
		data.Latest = &episodeOutputs(latest)[0]
	}

	return resourceContents(request.Params.URI, ResourceData{
		Metadata: ResourceMetadata{
			Timestamp:   time.Now(),
			ResourceURI: statsURI,
		},
		Data:  data,
		Links: map[string]string{"podcasts": podcastsURI},
	})
}

func resourceContents(uri string, data ResourceData) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
