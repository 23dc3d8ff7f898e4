// ABOUTME: Incremental sync of subscribed podcasts: fetch, normalize, diff by guid, persist
// ABOUTME: Update passes are serialized; fetches within a pass fan out with a bounded errgroup

package podcast

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/harper/podplay/internal/models"
	"github.com/harper/podplay/internal/normalize"
	"github.com/harper/podplay/internal/notify"
)

// UpdateAll syncs every subscribed podcast and reports those that gained episodes,
// in subscription order. A feed that cannot be fetched counts as zero new episodes.
// Persistence failures do not stop the pass; they are returned together with the
// results of the podcasts that did succeed.
func (r *Repo) UpdateAll(ctx context.Context) ([]models.PodcastUpdateInfo, error) {
	r.updateMu.Lock()
	defer r.updateMu.Unlock()

	podcasts, err := r.store.ListSubscribedPodcasts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list podcasts: %w", err)
	}

	r.log.WithField("podcasts", len(podcasts)).Debug("starting update")

	infos := make([]*models.PodcastUpdateInfo, len(podcasts))
	errs := make([]error, len(podcasts))

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, p := range podcasts {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			info, err := r.syncPodcast(ctx, p)
			switch {
			case errors.Is(err, ErrFeedUnavailable):
				r.log.WithField("feed_url", p.FeedURL).WithError(err).Warn("skipping feed")
			case err != nil:
				r.log.WithField("feed_url", p.FeedURL).WithError(err).Error("update failed")
				errs[i] = err
			default:
				infos[i] = info
			}
			return nil
		})
	}
	_ = g.Wait()

	var result *multierror.Error
	updates := make([]models.PodcastUpdateInfo, 0, len(podcasts))
	for i := range podcasts {
		if errs[i] != nil {
			result = multierror.Append(result, errs[i])
		}
		if infos[i] != nil && infos[i].NewCount > 0 {
			updates = append(updates, *infos[i])
		}
	}
	if err := ctx.Err(); err != nil {
		result = multierror.Append(result, err)
	}

	r.log.WithField("updated", len(updates)).Info("update finished")
	return updates, result.ErrorOrNil()
}

// UpdatePodcast syncs a single stored podcast. Unlike UpdateAll, fetch failures are returned.
func (r *Repo) UpdatePodcast(ctx context.Context, feedURL string) (*models.PodcastUpdateInfo, error) {
	r.updateMu.Lock()
	defer r.updateMu.Unlock()

	p, err := r.store.LoadPodcastByURL(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("load podcast %s: %w", feedURL, err)
	}

	return r.syncPodcast(ctx, p)
}

// syncPodcast fetches one podcast's feed and persists the episodes not stored yet.
func (r *Repo) syncPodcast(ctx context.Context, p *models.Podcast) (*models.PodcastUpdateInfo, error) {
	log := r.log.WithFields(logrus.Fields{
		"feed_url":   p.FeedURL,
		"podcast_id": p.ID,
	})

	raw, err := r.fetchFeed(ctx, p.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	remote := normalize.Podcast(p.FeedURL, p.ImageURL, raw)
	if remote == nil {
		return nil, fmt.Errorf("%w: %s has no episodes", ErrFeedUnavailable, p.FeedURL)
	}

	local, err := r.store.LoadEpisodes(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load episodes for %s: %w", p.FeedURL, err)
	}

	info := &models.PodcastUpdateInfo{FeedURL: p.FeedURL, Name: p.FeedTitle}

	fresh := NewEpisodes(remote.Episodes, local)
	if len(fresh) == 0 {
		log.Debug("no new episodes")
		return info, nil
	}

	models.StampPodcast(p.ID, fresh)
	if err := r.store.InsertEpisodes(ctx, p.ID, fresh); err != nil {
		return nil, fmt.Errorf("insert episodes for %s: %w", p.FeedURL, err)
	}

	info.NewCount = len(fresh)
	log.WithField("new_episodes", info.NewCount).Info("found new episodes")

	r.emit(ctx, notify.Event{
		Kind:      notify.EpisodesAdded,
		PodcastID: p.ID,
		FeedURL:   p.FeedURL,
		Title:     p.FeedTitle,
		NewCount:  info.NewCount,
	})

	return info, nil
}
