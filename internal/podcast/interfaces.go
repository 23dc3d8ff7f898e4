// ABOUTME: Collaborator interfaces for the sync engine
// ABOUTME: Narrow views of the feed service, store, and notifier so tests can mock them

package podcast

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/harper/podplay/internal/models"
	"github.com/harper/podplay/internal/notify"
	"github.com/harper/podplay/internal/parse"
)

// FeedFetcher resolves a feed URL to raw feed data.
type FeedFetcher interface {
	GetFeed(ctx context.Context, url string) (*parse.FeedData, error)
}

// Store is the part of storage.Store the engine depends on.
type Store interface {
	LoadPodcastByURL(ctx context.Context, feedURL string) (*models.Podcast, error)
	LoadEpisodes(ctx context.Context, podcastID int64) ([]*models.Episode, error)
	InsertPodcast(ctx context.Context, p *models.Podcast) (int64, error)
	InsertEpisodes(ctx context.Context, podcastID int64, episodes []*models.Episode) error
	DeletePodcast(ctx context.Context, id int64) error
	ListSubscribedPodcasts(ctx context.Context) ([]*models.Podcast, error)
}

// Notifier receives change events.
type Notifier interface {
	Notify(ctx context.Context, event notify.Event) error
}
