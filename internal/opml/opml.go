// ABOUTME: OPML reading and writing for podcast subscription lists
// ABOUTME: Nested outlines from other podcast apps are flattened into a single feed list

package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/harper/podplay/internal/models"
)

// Document is an OPML subscription list.
type Document struct {
	Title string
	Feeds []Feed
	urls  map[string]bool
}

// Feed is one subscribed podcast feed.
type Feed struct {
	URL   string
	Title string
}

// XML structs for parsing and writing OPML files
type opmlXML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    headXML  `xml:"head"`
	Body    bodyXML  `xml:"body"`
}

type headXML struct {
	Title string `xml:"title"`
}

type bodyXML struct {
	Outlines []outlineXML `xml:"outline"`
}

type outlineXML struct {
	Text     string       `xml:"text,attr"`
	Title    string       `xml:"title,attr,omitempty"`
	Type     string       `xml:"type,attr,omitempty"`
	XMLURL   string       `xml:"xmlUrl,attr,omitempty"`
	Children []outlineXML `xml:"outline,omitempty"`
}

// NewDocument creates an empty document with the given title.
func NewDocument(title string) *Document {
	return &Document{Title: title, urls: make(map[string]bool)}
}

// FromPodcasts builds a document listing the given podcasts in order.
func FromPodcasts(title string, podcasts []*models.Podcast) *Document {
	doc := NewDocument(title)
	for _, p := range podcasts {
		// Feed URLs are unique in the store, so AddFeed cannot fail here
		_ = doc.AddFeed(p.FeedURL, p.DisplayName())
	}
	return doc
}

// Parse reads OPML data and returns every feed it lists, depth first.
func Parse(r io.Reader) (*Document, error) {
	var opml opmlXML
	if err := xml.NewDecoder(r).Decode(&opml); err != nil {
		return nil, fmt.Errorf("failed to decode OPML: %w", err)
	}

	doc := NewDocument(opml.Head.Title)
	for _, outline := range opml.Body.Outlines {
		doc.collect(outline)
	}
	return doc, nil
}

// ParseFile reads OPML data from a file.
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// AddFeed appends a feed. Adding a URL twice is an error.
func (d *Document) AddFeed(url, title string) error {
	if d.urls == nil {
		d.urls = make(map[string]bool)
	}
	if d.urls[url] {
		return fmt.Errorf("feed with URL %s already exists", url)
	}

	d.Feeds = append(d.Feeds, Feed{URL: url, Title: title})
	d.urls[url] = true
	return nil
}

// RemoveFeed removes a feed by URL.
func (d *Document) RemoveFeed(url string) error {
	for i, f := range d.Feeds {
		if f.URL == url {
			d.Feeds = append(d.Feeds[:i], d.Feeds[i+1:]...)
			delete(d.urls, url)
			return nil
		}
	}
	return fmt.Errorf("feed not found: %s", url)
}

// Write writes the document as OPML 2.0.
func (d *Document) Write(w io.Writer) error {
	opml := opmlXML{
		Version: "2.0",
		Head:    headXML{Title: d.Title},
		Body:    bodyXML{Outlines: make([]outlineXML, len(d.Feeds))},
	}

	for i, f := range d.Feeds {
		opml.Body.Outlines[i] = outlineXML{
			Text:   f.Title,
			Title:  f.Title,
			Type:   "rss",
			XMLURL: f.URL,
		}
	}

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(opml); err != nil {
		return fmt.Errorf("failed to encode OPML: %w", err)
	}
	return nil
}

// WriteFile writes the document to path, creating parent directories.
func (d *Document) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return d.Write(file)
}

func (d *Document) collect(outline outlineXML) {
	if outline.XMLURL != "" {
		title := outline.Title
		if title == "" {
			title = outline.Text
		}
		// Later duplicates of the same URL are ignored
		_ = d.AddFeed(outline.XMLURL, title)
	}

	for _, child := range outline.Children {
		d.collect(child)
	}
}
