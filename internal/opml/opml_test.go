// ABOUTME: Test suite for OPML parsing and writing
// ABOUTME: Covers nested outlines, duplicates, podcast export, and round-trip integrity

package opml

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/podplay/internal/models"
)

const exportedOPML = `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head>
    <title>Podcast Subscriptions</title>
  </head>
  <body>
    <outline text="feeds">
      <outline type="rss" text="Show One" xmlUrl="https://one.example.com/feed" />
      <outline type="rss" text="Show Two" title="Show Two Title" xmlUrl="https://two.example.com/feed" />
    </outline>
    <outline type="rss" text="Show Three" xmlUrl="https://three.example.com/feed" />
    <outline type="rss" text="Dup" xmlUrl="https://one.example.com/feed" />
  </body>
</opml>`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(exportedOPML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Title != "Podcast Subscriptions" {
		t.Errorf("Title = %q", doc.Title)
	}

	want := []Feed{
		{URL: "https://one.example.com/feed", Title: "Show One"},
		{URL: "https://two.example.com/feed", Title: "Show Two Title"},
		{URL: "https://three.example.com/feed", Title: "Show Three"},
	}
	if len(doc.Feeds) != len(want) {
		t.Fatalf("got %d feeds, want %d", len(doc.Feeds), len(want))
	}
	for i := range want {
		if doc.Feeds[i] != want[i] {
			t.Errorf("feed %d = %+v, want %+v", i, doc.Feeds[i], want[i])
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse(strings.NewReader("<opml><body>")); err == nil {
		t.Error("expected error for truncated OPML")
	}
}

func TestAddAndRemoveFeed(t *testing.T) {
	doc := NewDocument("Test")

	if err := doc.AddFeed("https://a.example.com/feed", "A"); err != nil {
		t.Fatalf("AddFeed() error = %v", err)
	}
	if err := doc.AddFeed("https://a.example.com/feed", "A again"); err == nil {
		t.Error("expected error adding duplicate URL")
	}

	if err := doc.RemoveFeed("https://a.example.com/feed"); err != nil {
		t.Fatalf("RemoveFeed() error = %v", err)
	}
	if len(doc.Feeds) != 0 {
		t.Errorf("expected no feeds after remove, got %d", len(doc.Feeds))
	}
	if err := doc.RemoveFeed("https://a.example.com/feed"); err == nil {
		t.Error("expected error removing missing feed")
	}

	// URL can be added again once removed
	if err := doc.AddFeed("https://a.example.com/feed", "A"); err != nil {
		t.Errorf("AddFeed() after remove error = %v", err)
	}
}

func TestFromPodcasts(t *testing.T) {
	podcasts := []*models.Podcast{
		{FeedURL: "https://a.example.com/feed", FeedTitle: "A"},
		{FeedURL: "https://b.example.com/feed"},
	}

	doc := FromPodcasts("Mine", podcasts)
	if len(doc.Feeds) != 2 {
		t.Fatalf("got %d feeds, want 2", len(doc.Feeds))
	}
	if doc.Feeds[1].Title != "https://b.example.com/feed" {
		t.Errorf("untitled podcast should fall back to URL, got %q", doc.Feeds[1].Title)
	}
}

func TestRoundTrip(t *testing.T) {
	doc := NewDocument("Round Trip")
	_ = doc.AddFeed("https://a.example.com/feed", "A & B")
	_ = doc.AddFeed("https://c.example.com/feed?x=1&y=2", "C")

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "<?xml") {
		t.Error("output should start with XML header")
	}

	parsed, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.Title != "Round Trip" {
		t.Errorf("Title = %q", parsed.Title)
	}
	if len(parsed.Feeds) != 2 || parsed.Feeds[0] != doc.Feeds[0] || parsed.Feeds[1] != doc.Feeds[1] {
		t.Errorf("round trip mismatch: %+v", parsed.Feeds)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "subs.opml")

	doc := NewDocument("File")
	_ = doc.AddFeed("https://a.example.com/feed", "A")
	if err := doc.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(parsed.Feeds) != 1 {
		t.Errorf("got %d feeds, want 1", len(parsed.Feeds))
	}
}
