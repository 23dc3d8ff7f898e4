// ABOUTME: Backend-independent conformance tests for the Store interface
// ABOUTME: Each backend test file runs this suite against its own store constructor

package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/podplay/internal/models"
)

var testCtx = context.Background()

func testPodcast(url string) *models.Podcast {
	return &models.Podcast{
		FeedURL:         url,
		FeedTitle:       "Show " + url,
		FeedDescription: "About " + url,
		ImageURL:        "https://example.com/art.png",
		LastUpdated:     "Mon, 02 Jan 2006 15:04:05 -0700",
	}
}

func testEpisode(guid string, released *time.Time) *models.Episode {
	return &models.Episode{
		GUID:        guid,
		Title:       "Episode " + guid,
		Description: "<p>" + guid + "</p>",
		MediaURL:    "https://example.com/" + guid + ".mp3",
		MimeType:    "audio/mpeg",
		ReleaseDate: released,
		Duration:    "10:00",
	}
}

func at(day int) *time.Time {
	t := time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC)
	return &t
}

// runStoreTests exercises the Store contract against the store returned by newStore.
func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("InsertAndLoadPodcast", func(t *testing.T) {
		store := newStore(t)

		p := testPodcast("https://example.com/a.xml")
		id, err := store.InsertPodcast(testCtx, p)
		require.NoError(t, err)
		assert.NotZero(t, id)
		assert.Equal(t, id, p.ID)
		assert.True(t, p.Subscribed)

		byURL, err := store.LoadPodcastByURL(testCtx, p.FeedURL)
		require.NoError(t, err)
		assert.Equal(t, id, byURL.ID)
		assert.Equal(t, p.FeedTitle, byURL.FeedTitle)
		assert.Equal(t, p.FeedDescription, byURL.FeedDescription)
		assert.Equal(t, p.ImageURL, byURL.ImageURL)
		assert.Equal(t, p.LastUpdated, byURL.LastUpdated)
		assert.True(t, byURL.Subscribed)
		assert.Empty(t, byURL.Episodes)

		byID, err := store.LoadPodcast(testCtx, id)
		require.NoError(t, err)
		assert.Equal(t, p.FeedURL, byID.FeedURL)
	})

	t.Run("LoadMissingPodcast", func(t *testing.T) {
		store := newStore(t)

		_, err := store.LoadPodcastByURL(testCtx, "https://example.com/missing.xml")
		assert.True(t, errors.Is(err, ErrNotFound))

		_, err = store.LoadPodcast(testCtx, 999)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("DuplicateFeedURL", func(t *testing.T) {
		store := newStore(t)

		_, err := store.InsertPodcast(testCtx, testPodcast("https://example.com/dup.xml"))
		require.NoError(t, err)

		_, err = store.InsertPodcast(testCtx, testPodcast("https://example.com/dup.xml"))
		assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)
	})

	t.Run("IDsAreUnique", func(t *testing.T) {
		store := newStore(t)

		seen := make(map[int64]bool)
		for i := 0; i < 5; i++ {
			id, err := store.InsertPodcast(testCtx, testPodcast(fmt.Sprintf("https://example.com/%d.xml", i)))
			require.NoError(t, err)
			assert.False(t, seen[id], "id %d assigned twice", id)
			seen[id] = true
		}
	})

	t.Run("EpisodesInsertionOrder", func(t *testing.T) {
		store := newStore(t)

		p := testPodcast("https://example.com/order.xml")
		id, err := store.InsertPodcast(testCtx, p)
		require.NoError(t, err)

		episodes := []*models.Episode{
			testEpisode("z", at(1)),
			testEpisode("a", nil),
			testEpisode("m", at(3)),
		}
		require.NoError(t, store.InsertEpisodes(testCtx, id, episodes))

		loaded, err := store.LoadEpisodes(testCtx, id)
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		assert.Equal(t, "z", loaded[0].GUID)
		assert.Equal(t, "a", loaded[1].GUID)
		assert.Equal(t, "m", loaded[2].GUID)

		assert.Equal(t, id, loaded[0].PodcastID)
		assert.Equal(t, "Episode z", loaded[0].Title)
		assert.Equal(t, "<p>z</p>", loaded[0].Description)
		assert.Equal(t, "https://example.com/z.mp3", loaded[0].MediaURL)
		assert.Equal(t, "audio/mpeg", loaded[0].MimeType)
		assert.Equal(t, "10:00", loaded[0].Duration)
		require.NotNil(t, loaded[0].ReleaseDate)
		assert.True(t, loaded[0].ReleaseDate.Equal(*at(1)))
		assert.Nil(t, loaded[1].ReleaseDate)
	})

	t.Run("InsertEpisodeDuplicateGUID", func(t *testing.T) {
		store := newStore(t)

		id, err := store.InsertPodcast(testCtx, testPodcast("https://example.com/guid.xml"))
		require.NoError(t, err)

		e := testEpisode("same", nil)
		e.PodcastID = id
		require.NoError(t, store.InsertEpisode(testCtx, e))

		again := testEpisode("same", nil)
		again.PodcastID = id
		err = store.InsertEpisode(testCtx, again)
		assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)
	})

	t.Run("EmptyGUIDIsAValidKey", func(t *testing.T) {
		store := newStore(t)

		id, err := store.InsertPodcast(testCtx, testPodcast("https://example.com/empty.xml"))
		require.NoError(t, err)

		require.NoError(t, store.InsertEpisodes(testCtx, id, []*models.Episode{testEpisode("", nil)}))

		err = store.InsertEpisodes(testCtx, id, []*models.Episode{testEpisode("", nil)})
		assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)
	})

	t.Run("SameGUIDAcrossPodcasts", func(t *testing.T) {
		store := newStore(t)

		a, err := store.InsertPodcast(testCtx, testPodcast("https://example.com/x.xml"))
		require.NoError(t, err)
		b, err := store.InsertPodcast(testCtx, testPodcast("https://example.com/y.xml"))
		require.NoError(t, err)

		require.NoError(t, store.InsertEpisodes(testCtx, a, []*models.Episode{testEpisode("shared", nil)}))
		require.NoError(t, store.InsertEpisodes(testCtx, b, []*models.Episode{testEpisode("shared", nil)}))
	})

	t.Run("InsertEpisodesIsAtomic", func(t *testing.T) {
		store := newStore(t)

		id, err := store.InsertPodcast(testCtx, testPodcast("https://example.com/atomic.xml"))
		require.NoError(t, err)
		require.NoError(t, store.InsertEpisodes(testCtx, id, []*models.Episode{testEpisode("existing", nil)}))

		batch := []*models.Episode{
			testEpisode("new-1", nil),
			testEpisode("existing", nil),
			testEpisode("new-2", nil),
		}
		err = store.InsertEpisodes(testCtx, id, batch)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)

		loaded, err := store.LoadEpisodes(testCtx, id)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, "existing", loaded[0].GUID)
	})

	t.Run("InsertEpisodesUnknownPodcast", func(t *testing.T) {
		store := newStore(t)

		err := store.InsertEpisodes(testCtx, 12345, []*models.Episode{testEpisode("orphan", nil)})
		assert.Error(t, err)
	})

	t.Run("DeletePodcastCascades", func(t *testing.T) {
		store := newStore(t)

		id, err := store.InsertPodcast(testCtx, testPodcast("https://example.com/del.xml"))
		require.NoError(t, err)
		require.NoError(t, store.InsertEpisodes(testCtx, id, []*models.Episode{
			testEpisode("1", nil), testEpisode("2", nil),
		}))

		require.NoError(t, store.DeletePodcast(testCtx, id))

		_, err = store.LoadPodcast(testCtx, id)
		assert.True(t, errors.Is(err, ErrNotFound))

		loaded, err := store.LoadEpisodes(testCtx, id)
		require.NoError(t, err)
		assert.Empty(t, loaded)

		stats, err := store.Stats(testCtx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Podcasts)
		assert.Equal(t, 0, stats.Episodes)

		// Feed URL is free again
		_, err = store.InsertPodcast(testCtx, testPodcast("https://example.com/del.xml"))
		assert.NoError(t, err)

		err = store.DeletePodcast(testCtx, id)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("ListSubscribedPodcastsOrder", func(t *testing.T) {
		store := newStore(t)

		urls := []string{"https://c.example.com", "https://a.example.com", "https://b.example.com"}
		for _, u := range urls {
			_, err := store.InsertPodcast(testCtx, testPodcast(u))
			require.NoError(t, err)
		}

		podcasts, err := store.ListSubscribedPodcasts(testCtx)
		require.NoError(t, err)
		require.Len(t, podcasts, 3)
		for i, p := range podcasts {
			assert.Equal(t, urls[i], p.FeedURL)
		}
	})

	t.Run("ListEpisodesFilter", func(t *testing.T) {
		store := newStore(t)

		a, err := store.InsertPodcast(testCtx, testPodcast("https://example.com/la.xml"))
		require.NoError(t, err)
		b, err := store.InsertPodcast(testCtx, testPodcast("https://example.com/lb.xml"))
		require.NoError(t, err)

		require.NoError(t, store.InsertEpisodes(testCtx, a, []*models.Episode{
			testEpisode("a1", at(1)), testEpisode("a5", at(5)), testEpisode("a-undated", nil),
		}))
		require.NoError(t, store.InsertEpisodes(testCtx, b, []*models.Episode{
			testEpisode("b3", at(3)),
		}))

		all, err := store.ListEpisodes(testCtx, nil)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "a5", all[0].GUID)
		assert.Equal(t, "b3", all[1].GUID)
		assert.Equal(t, "a1", all[2].GUID)
		assert.Equal(t, "a-undated", all[3].GUID)

		byPodcast, err := store.ListEpisodes(testCtx, &EpisodeFilter{PodcastID: &b})
		require.NoError(t, err)
		require.Len(t, byPodcast, 1)
		assert.Equal(t, "b3", byPodcast[0].GUID)

		window, err := store.ListEpisodes(testCtx, &EpisodeFilter{Since: at(2), Until: at(5)})
		require.NoError(t, err)
		require.Len(t, window, 1)
		assert.Equal(t, "b3", window[0].GUID)

		limit := 2
		limited, err := store.ListEpisodes(testCtx, &EpisodeFilter{Limit: &limit})
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})

	t.Run("Stats", func(t *testing.T) {
		store := newStore(t)

		id, err := store.InsertPodcast(testCtx, testPodcast("https://example.com/stats.xml"))
		require.NoError(t, err)
		require.NoError(t, store.InsertEpisodes(testCtx, id, []*models.Episode{
			testEpisode("1", nil), testEpisode("2", nil), testEpisode("3", nil),
		}))

		stats, err := store.Stats(testCtx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Podcasts)
		assert.Equal(t, 3, stats.Episodes)
	})

	t.Run("ConcurrentInserts", func(t *testing.T) {
		store := newStore(t)

		var wg sync.WaitGroup
		errs := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id, err := store.InsertPodcast(testCtx, testPodcast(fmt.Sprintf("https://example.com/c%d.xml", i)))
				if err != nil {
					errs <- err
					return
				}
				errs <- store.InsertEpisodes(testCtx, id, []*models.Episode{testEpisode("ep", nil)})
			}(i)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}

		stats, err := store.Stats(testCtx)
		require.NoError(t, err)
		assert.Equal(t, 10, stats.Podcasts)
		assert.Equal(t, 10, stats.Episodes)
	})
}
