// ABOUTME: Badger key-value storage implementation of the Store interface
// ABOUTME: Podcasts and episodes are JSON values under ordered, zero-padded keys

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"

	"github.com/harper/podplay/internal/models"
)

const (
	podcastPrefix     = "podcast/"
	podcastPath       = "podcast/%020d"
	podcastURLPath    = "podcast-url/%s"
	episodePrefix     = "episode/"
	episodePodcast    = "episode/%020d/"
	episodePath       = "episode/%020d/%020d" // PodcastID + insertion sequence
	episodeGUIDPrefix = "episode-guid/%020d/"
	episodeGUIDPath   = "episode-guid/%020d/%s" // PodcastID + GUID

	podcastSeqKey = "seq/podcast"
	episodeSeqKey = "seq/episode"
	seqBandwidth  = 100
)

// BadgerStore implements the Store interface on an embedded Badger database.
type BadgerStore struct {
	db         *badger.DB
	podcastSeq *badger.Sequence
	episodeSeq *badger.Sequence
}

type podcastRecord struct {
	ID          int64  `json:"id"`
	FeedURL     string `json:"feed_url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	LastUpdated string `json:"last_updated"`
	Subscribed  bool   `json:"subscribed"`
}

type episodeRecord struct {
	PodcastID   int64      `json:"podcast_id"`
	GUID        string     `json:"guid"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	MediaURL    string     `json:"media_url"`
	MimeType    string     `json:"mime_type"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Duration    string     `json:"duration"`
}

// NewBadgerStore opens (or creates) a Badger database in dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	log.Debugf("opening badger database %q", dir)

	// Make sure database directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(log.StandardLogger()).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	podcastSeq, err := db.GetSequence([]byte(podcastSeqKey), seqBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("podcast sequence: %w", err)
	}

	episodeSeq, err := db.GetSequence([]byte(episodeSeqKey), seqBandwidth)
	if err != nil {
		_ = podcastSeq.Release()
		db.Close()
		return nil, fmt.Errorf("episode sequence: %w", err)
	}

	return &BadgerStore{db: db, podcastSeq: podcastSeq, episodeSeq: episodeSeq}, nil
}

// Close releases the id sequences and closes the database.
func (b *BadgerStore) Close() error {
	log.Debug("closing badger database")

	var errs []error
	if err := b.podcastSeq.Release(); err != nil {
		errs = append(errs, err)
	}
	if err := b.episodeSeq.Release(); err != nil {
		errs = append(errs, err)
	}
	if err := b.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Podcast Operations

// LoadPodcastByURL finds a podcast by its feed URL.
func (b *BadgerStore) LoadPodcastByURL(_ context.Context, feedURL string) (*models.Podcast, error) {
	var record podcastRecord
	err := b.db.View(func(txn *badger.Txn) error {
		id, err := b.lookupURL(txn, feedURL)
		if err != nil {
			return err
		}
		return b.getObj(txn, b.getKey(podcastPath, id), &record)
	})
	if err != nil {
		return nil, err
	}
	return record.toModel(), nil
}

// LoadPodcast retrieves a podcast by ID.
func (b *BadgerStore) LoadPodcast(_ context.Context, id int64) (*models.Podcast, error) {
	var record podcastRecord
	if err := b.db.View(func(txn *badger.Txn) error {
		return b.getObj(txn, b.getKey(podcastPath, id), &record)
	}); err != nil {
		return nil, err
	}
	return record.toModel(), nil
}

// InsertPodcast stores a new subscribed podcast and returns its ID.
func (b *BadgerStore) InsertPodcast(_ context.Context, p *models.Podcast) (int64, error) {
	next, err := b.podcastSeq.Next()
	if err != nil {
		return 0, fmt.Errorf("next podcast id: %w", err)
	}
	// Sequences start at zero, which is reserved for unsaved podcasts
	id := int64(next) + 1

	record := podcastRecord{
		ID:          id,
		FeedURL:     p.FeedURL,
		Title:       p.FeedTitle,
		Description: p.FeedDescription,
		ImageURL:    p.ImageURL,
		LastUpdated: p.LastUpdated,
		Subscribed:  true,
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		urlKey := b.getKey(podcastURLPath, p.FeedURL)
		if err := b.setObj(txn, urlKey, id, false); err != nil {
			return err
		}
		return b.setObj(txn, b.getKey(podcastPath, id), record, false)
	})
	if err != nil {
		return 0, fmt.Errorf("insert podcast: %w", err)
	}

	p.ID = id
	p.Subscribed = true
	return id, nil
}

// DeletePodcast removes a podcast and all its episodes.
func (b *BadgerStore) DeletePodcast(_ context.Context, id int64) error {
	return b.db.Update(func(txn *badger.Txn) error {
		var record podcastRecord
		if err := b.getObj(txn, b.getKey(podcastPath, id), &record); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("podcast %d: %w", id, ErrNotFound)
			}
			return err
		}

		if err := txn.Delete(b.getKey(podcastPath, id)); err != nil {
			return fmt.Errorf("delete podcast %d: %w", id, err)
		}
		if err := txn.Delete(b.getKey(podcastURLPath, record.FeedURL)); err != nil {
			return fmt.Errorf("delete podcast url %d: %w", id, err)
		}

		// Episodes and their guid index
		for _, prefix := range [][]byte{b.getKey(episodePodcast, id), b.getKey(episodeGUIDPrefix, id)} {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			if err := b.iterator(txn, opts, func(item *badger.Item) error {
				return txn.Delete(item.KeyCopy(nil))
			}); err != nil {
				return fmt.Errorf("delete episodes for podcast %d: %w", id, err)
			}
		}

		return nil
	})
}

// ListSubscribedPodcasts returns subscribed podcasts in insertion order.
func (b *BadgerStore) ListSubscribedPodcasts(_ context.Context) ([]*models.Podcast, error) {
	var podcasts []*models.Podcast
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = b.getKey(podcastPrefix)
		return b.iterator(txn, opts, func(item *badger.Item) error {
			var record podcastRecord
			if err := b.unmarshalObj(item, &record); err != nil {
				return err
			}
			if record.Subscribed {
				podcasts = append(podcasts, record.toModel())
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list podcasts: %w", err)
	}
	return podcasts, nil
}

// Episode Operations

// LoadEpisodes returns a podcast's episodes in insertion order.
func (b *BadgerStore) LoadEpisodes(_ context.Context, podcastID int64) ([]*models.Episode, error) {
	var episodes []*models.Episode
	err := b.db.View(func(txn *badger.Txn) error {
		return b.walkEpisodes(txn, b.getKey(episodePodcast, podcastID), func(e *models.Episode) error {
			episodes = append(episodes, e)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load episodes: %w", err)
	}
	return episodes, nil
}

// InsertEpisode stores a single episode.
func (b *BadgerStore) InsertEpisode(ctx context.Context, e *models.Episode) error {
	return b.InsertEpisodes(ctx, e.PodcastID, []*models.Episode{e})
}

// InsertEpisodes stores a batch of episodes in one transaction.
func (b *BadgerStore) InsertEpisodes(_ context.Context, podcastID int64, episodes []*models.Episode) error {
	if len(episodes) == 0 {
		return nil
	}

	return b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(b.getKey(podcastPath, podcastID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("podcast %d: %w", podcastID, ErrNotFound)
			}
			return err
		}

		for _, e := range episodes {
			seq, err := b.episodeSeq.Next()
			if err != nil {
				return fmt.Errorf("next episode id: %w", err)
			}

			key := b.getKey(episodePath, podcastID, seq)
			if err := b.setObj(txn, b.getKey(episodeGUIDPath, podcastID, e.GUID), string(key), false); err != nil {
				return fmt.Errorf("insert episode %q: %w", e.GUID, err)
			}

			record := newEpisodeRecord(podcastID, e)
			if err := b.setObj(txn, key, record, false); err != nil {
				return fmt.Errorf("insert episode %q: %w", e.GUID, err)
			}
		}

		return nil
	})
}

// ListEpisodes returns episodes matching the filter, newest first.
func (b *BadgerStore) ListEpisodes(_ context.Context, filter *EpisodeFilter) ([]*models.Episode, error) {
	prefix := b.getKey(episodePrefix)
	if filter != nil && filter.PodcastID != nil {
		prefix = b.getKey(episodePodcast, *filter.PodcastID)
	}

	var episodes []*models.Episode
	err := b.db.View(func(txn *badger.Txn) error {
		return b.walkEpisodes(txn, prefix, func(e *models.Episode) error {
			if filter.matches(e) {
				episodes = append(episodes, e)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}

	// Key order is insertion order, so a stable sort keeps the newest insert first among equal dates
	for i, j := 0, len(episodes)-1; i < j; i, j = i+1, j-1 {
		episodes[i], episodes[j] = episodes[j], episodes[i]
	}
	sort.SliceStable(episodes, func(i, j int) bool {
		a, c := episodes[i].ReleaseDate, episodes[j].ReleaseDate
		if a == nil || c == nil {
			return a != nil && c == nil
		}
		return a.After(*c)
	})

	if filter != nil && filter.Limit != nil && len(episodes) > *filter.Limit {
		episodes = episodes[:*filter.Limit]
	}
	return episodes, nil
}

// Statistics

// Stats returns overall podcast and episode counts.
func (b *BadgerStore) Stats(_ context.Context) (*Stats, error) {
	var stats Stats
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		if stats.Podcasts, err = b.countKeys(txn, b.getKey(podcastPrefix)); err != nil {
			return err
		}
		stats.Episodes, err = b.countKeys(txn, b.getKey(episodePrefix))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return &stats, nil
}

// Helper functions

func (f *EpisodeFilter) matches(e *models.Episode) bool {
	if f == nil {
		return true
	}
	if f.Since != nil && (e.ReleaseDate == nil || e.ReleaseDate.Before(*f.Since)) {
		return false
	}
	if f.Until != nil && (e.ReleaseDate == nil || !e.ReleaseDate.Before(*f.Until)) {
		return false
	}
	return true
}

func (b *BadgerStore) lookupURL(txn *badger.Txn, feedURL string) (int64, error) {
	var id int64
	if err := b.getObj(txn, b.getKey(podcastURLPath, feedURL), &id); err != nil {
		return 0, err
	}
	return id, nil
}

func (b *BadgerStore) walkEpisodes(txn *badger.Txn, prefix []byte, cb func(e *models.Episode) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = true
	return b.iterator(txn, opts, func(item *badger.Item) error {
		var record episodeRecord
		if err := b.unmarshalObj(item, &record); err != nil {
			return err
		}
		return cb(record.toModel())
	})
}

func (b *BadgerStore) countKeys(txn *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	count := 0
	err := b.iterator(txn, opts, func(*badger.Item) error {
		count++
		return nil
	})
	return count, err
}

func (b *BadgerStore) iterator(txn *badger.Txn, opts badger.IteratorOptions, callback func(item *badger.Item) error) error {
	iter := txn.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := callback(iter.Item()); err != nil {
			return err
		}
	}

	return nil
}

func (b *BadgerStore) getKey(format string, a ...interface{}) []byte {
	return []byte(fmt.Sprintf(format, a...))
}

func (b *BadgerStore) setObj(txn *badger.Txn, key []byte, obj interface{}, overwrite bool) error {
	if !overwrite {
		// Overwrites are not allowed, make sure there is no object with the given key
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("key %q: %w", key, ErrDuplicate)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check key %q: %w", key, err)
		}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("serialize key %q: %w", key, err)
	}

	return txn.Set(key, data)
}

func (b *BadgerStore) getObj(txn *badger.Txn, key []byte, out interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}

	return b.unmarshalObj(item, out)
}

func (b *BadgerStore) unmarshalObj(item *badger.Item, out interface{}) error {
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func newEpisodeRecord(podcastID int64, e *models.Episode) episodeRecord {
	record := episodeRecord{
		PodcastID:   podcastID,
		GUID:        e.GUID,
		Title:       e.Title,
		Description: e.Description,
		MediaURL:    e.MediaURL,
		MimeType:    e.MimeType,
		Duration:    e.Duration,
	}
	if e.ReleaseDate != nil {
		t := e.ReleaseDate.UTC()
		record.ReleaseDate = &t
	}
	return record
}

func (r podcastRecord) toModel() *models.Podcast {
	return &models.Podcast{
		ID:              r.ID,
		FeedURL:         r.FeedURL,
		FeedTitle:       r.Title,
		FeedDescription: r.Description,
		ImageURL:        r.ImageURL,
		LastUpdated:     r.LastUpdated,
		Subscribed:      r.Subscribed,
	}
}

func (r episodeRecord) toModel() *models.Episode {
	return &models.Episode{
		PodcastID:   r.PodcastID,
		GUID:        r.GUID,
		Title:       r.Title,
		Description: r.Description,
		MediaURL:    r.MediaURL,
		MimeType:    r.MimeType,
		ReleaseDate: r.ReleaseDate,
		Duration:    r.Duration,
	}
}

var _ Store = (*BadgerStore)(nil)
