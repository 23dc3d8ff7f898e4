// ABOUTME: Storage interface and types for podcast persistence
// ABOUTME: Defines the contract the sync engine relies on, independent of backend

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/harper/podplay/internal/models"
)

var (
	// ErrNotFound is returned when a podcast or episode does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("already exists")
)

// EpisodeFilter specifies criteria for listing episodes.
type EpisodeFilter struct {
	PodcastID *int64
	Since     *time.Time
	Until     *time.Time
	Limit     *int
}

// Stats holds overall store counts.
type Stats struct {
	Podcasts int `json:"podcasts"`
	Episodes int `json:"episodes"`
}

// Store defines the persistence contract for podcasts and episodes.
type Store interface {
	// Close closes the store and releases resources.
	Close() error

	// Podcast Operations

	// LoadPodcastByURL finds a podcast by its feed URL. Episodes are not loaded.
	LoadPodcastByURL(ctx context.Context, feedURL string) (*models.Podcast, error)

	// LoadPodcast retrieves a podcast by ID. Episodes are not loaded.
	LoadPodcast(ctx context.Context, id int64) (*models.Podcast, error)

	// InsertPodcast stores a new subscribed podcast and returns its assigned ID.
	// The podcast's ID and Subscribed fields are updated in place.
	InsertPodcast(ctx context.Context, p *models.Podcast) (int64, error)

	// DeletePodcast removes a podcast and all its episodes.
	DeletePodcast(ctx context.Context, id int64) error

	// ListSubscribedPodcasts returns subscribed podcasts in insertion order.
	ListSubscribedPodcasts(ctx context.Context) ([]*models.Podcast, error)

	// Episode Operations

	// LoadEpisodes returns a podcast's episodes in insertion order.
	LoadEpisodes(ctx context.Context, podcastID int64) ([]*models.Episode, error)

	// InsertEpisode stores one episode. A repeated (podcast, guid) pair fails with ErrDuplicate.
	InsertEpisode(ctx context.Context, e *models.Episode) error

	// InsertEpisodes stores a batch of episodes for one podcast atomically.
	InsertEpisodes(ctx context.Context, podcastID int64, episodes []*models.Episode) error

	// ListEpisodes returns episodes matching the filter, newest first.
	ListEpisodes(ctx context.Context, filter *EpisodeFilter) ([]*models.Episode, error)

	// Statistics

	// Stats returns overall counts.
	Stats(ctx context.Context) (*Stats, error)
}

// GetDefaultDataDir returns the directory holding local databases.
func GetDefaultDataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "podplay")
}
