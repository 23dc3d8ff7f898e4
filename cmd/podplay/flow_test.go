// ABOUTME: End-to-end tests running CLI commands against a temp SQLite store
// ABOUTME: Serves a podcast feed from httptest and checks command output

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/podplay/internal/models"
	"github.com/harper/podplay/internal/search"
	"github.com/harper/podplay/internal/storage"
)

type testFeed struct {
	mu       sync.Mutex
	episodes int
	requests int
}

func (f *testFeed) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *testFeed) publish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.episodes++
}

func (f *testFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/feed.xml" {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"><channel>`)
	b.WriteString(`<title>Test Show</title><description><![CDATA[<p>About <em>tests</em></p>]]></description>`)
	for n := f.episodes; n >= 1; n-- {
		fmt.Fprintf(&b, `<item><guid>ep-%d</guid><title>Episode %d</title>`, n, n)
		fmt.Fprintf(&b, `<enclosure url="https://cdn.example.com/%d.mp3" type="audio/mpeg" length="1"/>`, n)
		fmt.Fprintf(&b, `<pubDate>Mon, %02d Jan 2024 10:00:00 +0000</pubDate><itunes:duration>1800</itunes:duration></item>`, n)
	}
	b.WriteString(`</channel></rss>`)
	w.Header().Set("Content-Type", "application/rss+xml")
	fmt.Fprint(w, b.String())
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("PODPLAY_BACKEND", "sqlite")
	t.Setenv("PODPLAY_LOG_LEVEL", "error")
	t.Setenv("PODPLAY_AMQP_URL", "")
}

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	require.NoError(t, err, "podplay %s", strings.Join(args, " "))
	require.NoError(t, closeResources())
	return out.String()
}

func TestCLIFlow(t *testing.T) {
	isolate(t)

	src := &testFeed{}
	src.publish()
	src.publish()
	server := httptest.NewServer(src)
	defer server.Close()
	feedURL := server.URL + "/feed.xml"

	out := run(t, "subscribe", feedURL)
	assert.Contains(t, out, "Test Show")
	assert.Contains(t, out, "(2 episodes)")

	out = run(t, "subscribe", feedURL)
	assert.Contains(t, out, "Already subscribed")

	out = run(t, "list")
	assert.Contains(t, out, "1 subscription(s)")
	assert.Contains(t, out, feedURL)

	out = run(t, "episodes")
	assert.Contains(t, out, "Episode 2")
	assert.Contains(t, out, "30:00")
	assert.Less(t, strings.Index(out, "Episode 2"), strings.Index(out, "Episode 1"), "newest first")

	out = run(t, "update")
	assert.Contains(t, out, "no new episodes")

	src.publish()
	out = run(t, "update", feedURL)
	assert.Contains(t, out, "Test Show: 1 new episode(s)")

	out = run(t, "show", "--plain", feedURL)
	assert.Contains(t, out, "subscribed")
	assert.Contains(t, out, "3 episode(s)")
	assert.Contains(t, out, "*tests*")

	out = run(t, "show", server.URL+"/missing")
	assert.Contains(t, out, "could not load feed")

	out = run(t, "export")
	assert.Contains(t, out, `xmlUrl="`+feedURL+`"`)

	out = run(t, "unsubscribe", feedURL)
	assert.Contains(t, out, "Unsubscribed from Test Show")

	out = run(t, "list")
	assert.Contains(t, out, "No subscriptions")

	opmlPath := filepath.Join(t.TempDir(), "subs.opml")
	require.NoError(t, os.WriteFile(opmlPath, []byte(`<?xml version="1.0"?>
<opml version="2.0"><head><title>Other app</title></head><body>
  <outline text="Shows"><outline text="Test Show" type="rss" xmlUrl="`+feedURL+`"/></outline>
</body></opml>`), 0o600))

	out = run(t, "import", opmlPath)
	assert.Contains(t, out, "Imported 1, skipped 0, failed 0")
}

func TestSubscribeFetchesFeedOnce(t *testing.T) {
	isolate(t)

	src := &testFeed{}
	src.publish()
	server := httptest.NewServer(src)
	defer server.Close()

	out := run(t, "subscribe", server.URL+"/feed.xml")
	assert.Contains(t, out, "(1 episodes)")
	assert.Equal(t, 1, src.requestCount(), "discovery result should be reused for the subscription")
}

func TestSearchAndSubscribe(t *testing.T) {
	isolate(t)

	src := &testFeed{}
	src.publish()
	feeds := httptest.NewServer(src)
	defer feeds.Close()
	feedURL := feeds.URL + "/feed.xml"

	var terms []string
	var mu sync.Mutex
	directory := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		terms = append(terms, r.URL.Query().Get("term"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"resultCount":1,"results":[{"collectionCensoredName":"Test Show","artistName":"Tester",`+
			`"feedUrl":%q,"artworkUrl600":"https://cdn.example.com/600.jpg","primaryGenreName":"Technology","trackCount":1}]}`, feedURL)
	}))
	defer directory.Close()
	t.Setenv("PODPLAY_SEARCH_URL", directory.URL)

	out := run(t, "search", "test", "show")
	assert.Contains(t, out, " 1. ")
	assert.Contains(t, out, "Test Show")
	assert.Contains(t, out, "by Tester")
	assert.Contains(t, out, feedURL)

	out = run(t, "list")
	assert.Contains(t, out, "No subscriptions")

	t.Cleanup(func() { _ = searchCmd.Flags().Set("subscribe", "0") })
	out = run(t, "search", "--subscribe", "1", "test show")
	assert.Contains(t, out, "Subscribed to Test Show (1 episodes)")

	out = run(t, "show", "--plain", feedURL)
	assert.Contains(t, out, "https://cdn.example.com/600.jpg")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"test show", "test show"}, terms)
}

func TestPrintSearchResults(t *testing.T) {
	var out bytes.Buffer
	printSearchResults(&out, nil)
	assert.Equal(t, "No podcasts found\n", out.String())

	updated := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	out.Reset()
	printSearchResults(&out, []search.Result{
		{Name: "Go Time", Artist: "Changelog", FeedURL: "https://a.example.com/feed", Genre: "Technology", EpisodeCount: 300, LastUpdated: &updated},
		{Name: "Bare", FeedURL: "https://b.example.com/feed"},
	})
	assert.Contains(t, out.String(), " 1. ")
	assert.Contains(t, out.String(), "Go Time")
	assert.Contains(t, out.String(), "Technology · 300 episodes · updated")
	assert.Contains(t, out.String(), " 2. ")
	assert.Contains(t, out.String(), "https://b.example.com/feed")
}

func TestVersionSkipsStore(t *testing.T) {
	isolate(t)

	out := run(t, "version")
	assert.Contains(t, out, "podplay "+Version)
	assert.Nil(t, store)
}

func TestEpisodeFilter(t *testing.T) {
	now := time.Date(2024, time.March, 13, 15, 0, 0, 0, time.UTC)

	filter, err := episodeFilter(episodesCmd, now)
	require.NoError(t, err)
	assert.Nil(t, filter.Since)
	assert.Nil(t, filter.Until)

	require.NoError(t, episodesCmd.Flags().Set("yesterday", "true"))
	t.Cleanup(func() { _ = episodesCmd.Flags().Set("yesterday", "false") })

	filter, err = episodeFilter(episodesCmd, now)
	require.NoError(t, err)
	require.NotNil(t, filter.Since)
	require.NotNil(t, filter.Until)
	assert.Equal(t, time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC), *filter.Since)
	assert.Equal(t, time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC), *filter.Until)
}

func TestPrintUpdates(t *testing.T) {
	var out bytes.Buffer
	printUpdates(&out, nil)
	assert.Equal(t, "no new episodes\n", out.String())

	out.Reset()
	printUpdates(&out, []models.PodcastUpdateInfo{
		{FeedURL: "https://a.example.com/feed", Name: "A", NewCount: 2},
		{FeedURL: "https://b.example.com/feed", NewCount: 1},
	})
	assert.Contains(t, out.String(), "A: 2 new episode(s)")
	assert.Contains(t, out.String(), "https://b.example.com/feed: 1 new episode(s)")
}

func TestPrintEpisodeLine(t *testing.T) {
	released := time.Date(2024, time.January, 2, 12, 0, 0, 0, time.Local)

	var out bytes.Buffer
	printEpisodeLine(&out, &models.Episode{Title: "Pilot", ReleaseDate: &released, Duration: "3723"}, "Show")
	assert.Contains(t, out.String(), "2024-01-02")
	assert.Contains(t, out.String(), "Show")
	assert.Contains(t, out.String(), "Pilot")
	assert.Contains(t, out.String(), "1:02:03")

	out.Reset()
	printEpisodeLine(&out, &models.Episode{}, "")
	assert.Contains(t, out.String(), "Untitled")
}

func TestCloseResourcesIdempotent(t *testing.T) {
	s, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "close.db"))
	require.NoError(t, err)

	store = s
	require.NoError(t, closeResources())
	assert.Nil(t, store)
	require.NoError(t, closeResources())
}
