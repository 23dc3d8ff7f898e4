// ABOUTME: MCP tool definitions and handlers for podcast and episode operations
// ABOUTME: Provides tools for subscribing, unsubscribing, updating, and browsing episodes

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/harper/podplay/internal/content"
	"github.com/harper/podplay/internal/models"
	"github.com/harper/podplay/internal/search"
	"github.com/harper/podplay/internal/storage"
	"github.com/harper/podplay/internal/timeutil"
)

// excerptLength bounds episode descriptions in listings
const excerptLength = 280

// Type definitions for input/output structures

type PodcastOutput struct {
	ID          int64  `json:"id,omitempty"`
	FeedURL     string `json:"feed_url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
	Subscribed  bool   `json:"subscribed"`
}

type ListPodcastsOutput struct {
	Podcasts []PodcastOutput `json:"podcasts"`
	Count    int             `json:"count"`
}

type PodcastURLInput struct {
	URL string `json:"url"`
}

type SubscribeInput struct {
	URL      string  `json:"url"`
	ImageURL *string `json:"image_url,omitempty"`
}

type SearchInput struct {
	Term  string `json:"term"`
	Limit *int   `json:"limit,omitempty"`
}

type SearchResultOutput struct {
	search.Result
	Subscribed bool `json:"subscribed"`
}

type SearchOutput struct {
	Term    string               `json:"term"`
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

type EpisodeOutput struct {
	GUID        string     `json:"guid"`
	PodcastID   int64      `json:"podcast_id,omitempty"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	MediaURL    string     `json:"media_url,omitempty"`
	MimeType    string     `json:"mime_type,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Duration    string     `json:"duration,omitempty"`
}

type GetPodcastOutput struct {
	Podcast  PodcastOutput   `json:"podcast"`
	Episodes []EpisodeOutput `json:"episodes"`
	Count    int             `json:"count"`
}

type UnsubscribeOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

type UpdateInput struct {
	URL *string `json:"url,omitempty"`
}

type UpdateOutput struct {
	RunID    string                     `json:"run_id"`
	Updates  []models.PodcastUpdateInfo `json:"updates"`
	TotalNew int                        `json:"total_new"`
	Error    *string                    `json:"error,omitempty"`
	Message  string                     `json:"message"`
}

type ListEpisodesInput struct {
	PodcastURL *string `json:"podcast_url,omitempty"`
	Since      *string `json:"since,omitempty"`
	Until      *string `json:"until,omitempty"`
	Limit      *int    `json:"limit,omitempty"`
}

type ListEpisodesOutput struct {
	Episodes []EpisodeOutput `json:"episodes"`
	Count    int             `json:"count"`
	Filters  map[string]any  `json:"filters"`
}

// Tool registration

func (s *Server) registerTools() {
	s.registerListPodcastsTool()
	s.registerGetPodcastTool()
	s.registerSubscribeTool()
	s.registerUnsubscribeTool()
	s.registerUpdateAllTool()
	s.registerListEpisodesTool()
	s.registerSearchPodcastsTool()
}

func (s *Server) registerListPodcastsTool() {
	tool := mcp.Tool{
		Name:        "list_podcasts",
		Description: "List every subscribed podcast in subscription order. Returns feed URL, title, description, artwork and last-updated value for each podcast. Episodes are not included; use get_podcast or list_episodes for those.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
	s.mcpServer.AddTool(tool, s.handleListPodcasts)
}

func (s *Server) registerGetPodcastTool() {
	tool := mcp.Tool{
		Name:        "get_podcast",
		Description: "Resolve a podcast feed URL. A subscribed podcast is returned from local storage with all stored episodes. Any other URL is fetched and parsed without being saved, so you can preview a show before subscribing.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "The podcast feed URL. Example: 'https://example.com/podcast.xml'",
				},
			},
			Required: []string{"url"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleGetPodcast)
}

func (s *Server) registerSubscribeTool() {
	tool := mcp.Tool{
		Name:        "subscribe",
		Description: "Subscribe to a podcast. Accepts a feed URL or a show's website; the feed is discovered from the page when needed. The podcast and all of its current episodes are stored. Subscribing to an existing podcast returns it unchanged.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "Feed URL or show website. Example: 'https://example.com/show'",
				},
				"image_url": map[string]interface{}{
					"type":        "string",
					"description": "Artwork to store with a new subscription, usually the image_url of a search_podcasts result. Defaults to the feed's own artwork.",
				},
			},
			Required: []string{"url"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleSubscribe)
}

func (s *Server) registerUnsubscribeTool() {
	tool := mcp.Tool{
		Name:        "unsubscribe",
		Description: "Unsubscribe from a podcast and delete its stored episodes. This cannot be undone, although subscribing again restores whatever the feed still publishes.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "The feed URL of a subscribed podcast",
				},
			},
			Required: []string{"url"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleUnsubscribe)
}

func (s *Server) registerUpdateAllTool() {
	tool := mcp.Tool{
		Name:        "update_all",
		Description: "Check subscribed podcasts for new episodes and store them. Without a url every subscription is updated and unreachable feeds are skipped. With a url only that podcast is updated and fetch failures are reported. Returns the podcasts that gained episodes.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "Optional feed URL of a single subscribed podcast to update",
				},
			},
		},
	}
	s.mcpServer.AddTool(tool, s.handleUpdateAll)
}

func (s *Server) registerListEpisodesTool() {
	tool := mcp.Tool{
		Name:        "list_episodes",
		Description: "List stored episodes newest first, optionally restricted to one podcast and a release-date window. Descriptions are shortened to plain-text excerpts.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"podcast_url": map[string]interface{}{
					"type":        "string",
					"description": "Optional feed URL to restrict results to one podcast",
				},
				"since": map[string]interface{}{
					"type":        "string",
					"description": "Only episodes released at or after this time. Accepts today, yesterday, week, month, YYYY-MM-DD, or RFC3339",
				},
				"until": map[string]interface{}{
					"type":        "string",
					"description": "Only episodes released before this time. Same formats as since",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of episodes to return",
					"minimum":     0,
				},
			},
		},
	}
	s.mcpServer.AddTool(tool, s.handleListEpisodes)
}

// Tool handlers

func (s *Server) registerSearchPodcastsTool() {
	tool := mcp.Tool{
		Name:        "search_podcasts",
		Description: "Search the iTunes podcast directory by name, author or topic. Returns feed URL, title, author, genre and artwork for each show, and whether you are already subscribed. Pass a result's feed_url and image_url to subscribe.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"term": map[string]interface{}{
					"type":        "string",
					"description": "Search terms. Example: 'golang'",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (default 25, max 200)",
					"minimum":     1,
					"maximum":     search.MaxLimit,
				},
			},
			Required: []string{"term"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleSearchPodcasts)
}

func (s *Server) handleListPodcasts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	podcasts, err := s.repo.Podcasts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list podcasts: %w", err)
	}

	outputs := lo.Map(podcasts, func(p *models.Podcast, _ int) PodcastOutput {
		return podcastOutput(p)
	})

	return jsonResult(ListPodcastsOutput{Podcasts: outputs, Count: len(outputs)})
}

func (s *Server) handleGetPodcast(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input PodcastURLInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if err := validateFeedURL(input.URL); err != nil {
		return nil, err
	}

	p, err := s.repo.GetPodcast(ctx, input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load podcast: %w", err)
	}
	if p == nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not load feed: %s", input.URL)), nil
	}

	episodes := episodeOutputs(p.Episodes)
	return jsonResult(GetPodcastOutput{
		Podcast:  podcastOutput(p),
		Episodes: episodes,
		Count:    len(episodes),
	})
}

func (s *Server) handleSubscribe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input SubscribeInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if err := validateFeedURL(input.URL); err != nil {
		return nil, err
	}

	found, err := s.discoverer.Discover(ctx, input.URL)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not find a podcast feed at %s: %v", input.URL, err)), nil
	}

	imageURL := found.ImageURL
	if input.ImageURL != nil && *input.ImageURL != "" {
		imageURL = *input.ImageURL
	}

	p, err := s.repo.SubscribeFeed(ctx, found.URL, imageURL, found.Feed)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	return jsonResult(podcastOutput(p))
}

func (s *Server) handleUnsubscribe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input PodcastURLInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	p, err := s.store.LoadPodcastByURL(ctx, input.URL)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("not subscribed: %s", input.URL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load podcast: %w", err)
	}

	title := p.DisplayName()
	if err := s.repo.Delete(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to unsubscribe: %w", err)
	}

	return jsonResult(UnsubscribeOutput{
		Success: true,
		Message: fmt.Sprintf("Unsubscribed from %s", title),
		URL:     input.URL,
	})
}

func (s *Server) handleUpdateAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input UpdateInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	runID := uuid.NewString()
	log := s.log.WithField("run_id", runID)
	log.Info("update requested")

	var (
		updates []models.PodcastUpdateInfo
		err     error
	)
	if input.URL != nil && *input.URL != "" {
		var info *models.PodcastUpdateInfo
		info, err = s.repo.UpdatePodcast(ctx, *input.URL)
		if info != nil && info.NewCount > 0 {
			updates = append(updates, *info)
		}
	} else {
		updates, err = s.repo.UpdateAll(ctx)
	}

	output := UpdateOutput{
		RunID:    runID,
		Updates:  updates,
		TotalNew: lo.SumBy(updates, func(u models.PodcastUpdateInfo) int { return u.NewCount }),
	}
	if output.Updates == nil {
		output.Updates = []models.PodcastUpdateInfo{}
	}
	if err != nil {
		msg := err.Error()
		output.Error = &msg
		log.WithError(err).Warn("update finished with errors")
	}

	switch {
	case len(updates) == 0 && err == nil:
		output.Message = "no new episodes"
	case len(updates) == 0:
		output.Message = "update failed"
	default:
		output.Message = fmt.Sprintf("%d new episodes across %d podcasts", output.TotalNew, len(updates))
	}

	log.WithFields(logrus.Fields{"updated": len(updates), "new": output.TotalNew}).Info("update complete")
	return jsonResult(output)
}

func (s *Server) handleListEpisodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input ListEpisodesInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	filter := &storage.EpisodeFilter{Limit: input.Limit}
	filters := make(map[string]any)

	if input.Limit != nil {
		if *input.Limit < 0 {
			return nil, fmt.Errorf("limit must be non-negative, got %d", *input.Limit)
		}
		filters["limit"] = *input.Limit
	}
	if input.Since != nil {
		t, err := parseDateString(*input.Since)
		if err != nil {
			return nil, fmt.Errorf("invalid since value: %w", err)
		}
		filter.Since = &t
		filters["since"] = t
	}
	if input.Until != nil {
		t, err := parseDateString(*input.Until)
		if err != nil {
			return nil, fmt.Errorf("invalid until value: %w", err)
		}
		filter.Until = &t
		filters["until"] = t
	}
	if input.PodcastURL != nil && *input.PodcastURL != "" {
		p, err := s.store.LoadPodcastByURL(ctx, *input.PodcastURL)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("not subscribed: %s", *input.PodcastURL)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load podcast: %w", err)
		}
		filter.PodcastID = &p.ID
		filters["podcast_url"] = p.FeedURL
	}

	episodes, err := s.store.ListEpisodes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}

	outputs := episodeOutputs(episodes)
	return jsonResult(ListEpisodesOutput{
		Episodes: outputs,
		Count:    len(outputs),
		Filters:  filters,
	})
}

func (s *Server) handleSearchPodcasts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input SearchInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	limit := search.DefaultLimit
	if input.Limit != nil {
		limit = *input.Limit
	}

	results, err := s.searcher.SearchLimit(ctx, input.Term, limit)
	if errors.Is(err, search.ErrEmptyTerm) {
		return nil, err
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("podcast search failed: %v", err)), nil
	}

	out := SearchOutput{
		Term:    input.Term,
		Results: make([]SearchResultOutput, 0, len(results)),
	}
	for _, r := range results {
		_, loadErr := s.store.LoadPodcastByURL(ctx, r.FeedURL)
		if loadErr != nil && !errors.Is(loadErr, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to check subscription: %w", loadErr)
		}
		out.Results = append(out.Results, SearchResultOutput{Result: r, Subscribed: loadErr == nil})
	}
	out.Count = len(out.Results)

	return jsonResult(out)
}

// Helpers

func podcastOutput(p *models.Podcast) PodcastOutput {
	return PodcastOutput{
		ID:          p.ID,
		FeedURL:     p.FeedURL,
		Title:       p.DisplayName(),
		Description: content.Excerpt(p.FeedDescription, excerptLength),
		ImageURL:    p.ImageURL,
		LastUpdated: p.LastUpdated,
		Subscribed:  p.Subscribed,
	}
}

func episodeOutputs(episodes []*models.Episode) []EpisodeOutput {
	return lo.Map(episodes, func(e *models.Episode, _ int) EpisodeOutput {
		return EpisodeOutput{
			GUID:        e.GUID,
			PodcastID:   e.PodcastID,
			Title:       e.Title,
			Excerpt:     content.Excerpt(e.Description, excerptLength),
			MediaURL:    e.MediaURL,
			MimeType:    e.MimeType,
			ReleaseDate: e.ReleaseDate,
			Duration:    timeutil.FormatDuration(e.Duration),
		}
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// validateFeedURL rejects anything that is not an absolute http(s) URL
func validateFeedURL(raw string) error {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("feed URL must use http or https scheme, got: %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("feed URL must have a host")
	}
	return nil
}

// parseDateString parses a period name, an ISO date, or an RFC3339 timestamp.
func parseDateString(s string) (time.Time, error) {
	if w, ok := timeutil.ParsePeriod(s, time.Now()); ok {
		return *w.Since, nil
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("cannot parse date: use today, yesterday, week, month, or YYYY-MM-DD format")
}
