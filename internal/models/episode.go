// ABOUTME: Episode model for a single podcast episode keyed by its feed guid
// ABOUTME: Episodes are immutable once stored; syncs only ever add new ones

package models

import "time"

// Episode is one item of a podcast feed.
type Episode struct {
	GUID        string     // Unique within a podcast; may be empty when the feed omits it
	PodcastID   int64      // Owning podcast, stamped at persist time
	Title       string     // Episode title
	Description string     // Episode description (often HTML)
	MediaURL    string     // Enclosure URL
	MimeType    string     // Enclosure MIME type
	ReleaseDate *time.Time // Parsed publish date, nil when missing or unparseable
	Duration    string     // Free-form duration as published by the feed
}

// StampPodcast assigns the owning podcast ID to every episode.
func StampPodcast(podcastID int64, episodes []*Episode) {
	for _, e := range episodes {
		e.PodcastID = podcastID
	}
}
