// ABOUTME: Podcast repository: local-first podcast resolution and subscription persistence
// ABOUTME: Combines a feed fetcher and a local store; remote resolutions of one URL share a fetch

package podcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/harper/podplay/internal/models"
	"github.com/harper/podplay/internal/normalize"
	"github.com/harper/podplay/internal/notify"
	"github.com/harper/podplay/internal/parse"
	"github.com/harper/podplay/internal/storage"
)

// DefaultConcurrency is the number of feeds fetched in parallel during UpdateAll.
const DefaultConcurrency = 4

var (
	// ErrAlreadySaved is returned when saving a podcast that already has an ID.
	ErrAlreadySaved = errors.New("podcast already saved")

	// ErrFeedUnavailable is returned when a feed cannot be fetched or has no episodes.
	ErrFeedUnavailable = errors.New("could not load feed")
)

// Repo is the podcast sync engine.
type Repo struct {
	fetcher     FeedFetcher
	store       Store
	notifier    Notifier
	log         *logrus.Entry
	concurrency int

	fetches  singleflight.Group
	updateMu sync.Mutex
	now      func() time.Time
}

// Option configures a Repo.
type Option func(*Repo)

// WithLogger sets the structured logger.
func WithLogger(log *logrus.Entry) Option {
	return func(r *Repo) {
		r.log = log
	}
}

// WithNotifier sets the receiver of change events.
func WithNotifier(n Notifier) Option {
	return func(r *Repo) {
		r.notifier = n
	}
}

// WithConcurrency sets how many feeds UpdateAll fetches in parallel.
func WithConcurrency(n int) Option {
	return func(r *Repo) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// New creates a repository over the given fetcher and store.
func New(fetcher FeedFetcher, store Store, opts ...Option) *Repo {
	r := &Repo{
		fetcher:     fetcher,
		store:       store,
		notifier:    notify.Nop{},
		log:         logrus.NewEntry(logrus.StandardLogger()),
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetPodcast resolves a feed URL. A locally stored podcast is returned with its
// episodes and no network access. Otherwise the feed is fetched and a transient
// podcast is returned. A nil podcast with a nil error means the feed could not be resolved.
func (r *Repo) GetPodcast(ctx context.Context, feedURL string) (*models.Podcast, error) {
	p, err := r.localPodcast(ctx, feedURL)
	if err != nil || p != nil {
		return p, err
	}

	raw, err := r.fetchFeed(ctx, feedURL)
	if err != nil {
		r.log.WithField("feed_url", feedURL).WithError(err).Warn("could not fetch feed")
		return nil, nil
	}

	// Artwork is filled in by the caller
	return normalize.Podcast(feedURL, "", raw), nil
}

// localPodcast loads a stored podcast with its episodes, or nil when the URL is not stored.
func (r *Repo) localPodcast(ctx context.Context, feedURL string) (*models.Podcast, error) {
	p, err := r.store.LoadPodcastByURL(ctx, feedURL)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load podcast: %w", err)
	}

	episodes, err := r.store.LoadEpisodes(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load episodes: %w", err)
	}
	p.Episodes = episodes
	return p, nil
}

// Save persists a transient podcast and every attached episode.
func (r *Repo) Save(ctx context.Context, p *models.Podcast) error {
	if p.IsPersisted() {
		return ErrAlreadySaved
	}

	id, err := r.store.InsertPodcast(ctx, p)
	if err != nil {
		return fmt.Errorf("save podcast: %w", err)
	}
	p.ID = id
	p.Subscribed = true

	// Feeds without guids would otherwise collide on the empty key
	p.Episodes = NewEpisodes(p.Episodes, nil)
	models.StampPodcast(id, p.Episodes)

	if err := r.store.InsertEpisodes(ctx, id, p.Episodes); err != nil {
		if delErr := r.store.DeletePodcast(ctx, id); delErr != nil {
			r.log.WithField("podcast_id", id).WithError(delErr).Error("could not roll back podcast")
		}
		p.ID = 0
		p.Subscribed = false
		return fmt.Errorf("save episodes: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"feed_url":   p.FeedURL,
		"podcast_id": id,
		"episodes":   len(p.Episodes),
	}).Info("saved podcast")

	r.emit(ctx, notify.Event{Kind: notify.PodcastSaved, PodcastID: id, FeedURL: p.FeedURL, Title: p.FeedTitle})
	return nil
}

// Delete removes a stored podcast and its episodes.
func (r *Repo) Delete(ctx context.Context, p *models.Podcast) error {
	if err := r.store.DeletePodcast(ctx, p.ID); err != nil {
		return fmt.Errorf("delete podcast: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"feed_url":   p.FeedURL,
		"podcast_id": p.ID,
	}).Info("deleted podcast")

	r.emit(ctx, notify.Event{Kind: notify.PodcastDeleted, PodcastID: p.ID, FeedURL: p.FeedURL, Title: p.FeedTitle})

	p.ID = 0
	p.Subscribed = false
	return nil
}

// Subscribe resolves a feed URL and saves it if it is not stored yet.
// A non-empty imageURL replaces the artwork of a newly saved podcast.
func (r *Repo) Subscribe(ctx context.Context, feedURL, imageURL string) (*models.Podcast, error) {
	return r.SubscribeFeed(ctx, feedURL, imageURL, nil)
}

// SubscribeFeed is Subscribe for a feed the caller already fetched and parsed.
// A nil raw fetches feedURL. A stored podcast is returned as is either way.
func (r *Repo) SubscribeFeed(ctx context.Context, feedURL, imageURL string, raw *parse.FeedData) (*models.Podcast, error) {
	var (
		p   *models.Podcast
		err error
	)
	if raw == nil {
		p, err = r.GetPodcast(ctx, feedURL)
	} else {
		p, err = r.localPodcast(ctx, feedURL)
		if err == nil && p == nil {
			p = normalize.Podcast(feedURL, "", raw)
		}
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%s: %w", feedURL, ErrFeedUnavailable)
	}
	if p.IsPersisted() {
		return p, nil
	}

	if imageURL != "" {
		p.ImageURL = imageURL
	}

	if err := r.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Podcasts returns a snapshot of the subscribed podcasts without episodes.
func (r *Repo) Podcasts(ctx context.Context) ([]*models.Podcast, error) {
	podcasts, err := r.store.ListSubscribedPodcasts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list podcasts: %w", err)
	}
	return podcasts, nil
}

// fetchFeed shares one in-flight fetch between concurrent callers of the same URL.
// Callers normalize separately so they never share a mutable podcast.
func (r *Repo) fetchFeed(ctx context.Context, feedURL string) (*parse.FeedData, error) {
	v, err, _ := r.fetches.Do(feedURL, func() (interface{}, error) {
		return r.fetcher.GetFeed(ctx, feedURL)
	})
	if err != nil {
		return nil, err
	}
	data, _ := v.(*parse.FeedData)
	return data, nil
}

func (r *Repo) emit(ctx context.Context, event notify.Event) {
	event.At = r.now()
	if err := r.notifier.Notify(ctx, event); err != nil {
		r.log.WithField("kind", event.Kind).WithError(err).Warn("could not deliver notification")
	}
}
