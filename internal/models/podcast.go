// ABOUTME: Podcast model representing a subscribed (or transient) podcast feed
// ABOUTME: Identity is assigned by the store on first insert and never changes afterwards

package models

// Podcast represents a podcast feed and, when loaded, its episodes.
// A zero ID means the podcast has not been persisted yet.
type Podcast struct {
	ID              int64      // Store-assigned identifier (0 until first insert)
	FeedURL         string     // Feed URL, unique across podcasts
	FeedTitle       string     // Channel title
	FeedDescription string     // Channel description (falls back to summary)
	ImageURL        string     // Artwork URL, filled in outside of normalization
	LastUpdated     string     // Last-updated value from the source feed, opaque
	Subscribed      bool       // True once saved to the store
	Episodes        []*Episode // Populated on demand
}

// IsPersisted reports whether the store has assigned an ID to the podcast.
func (p *Podcast) IsPersisted() bool {
	return p.ID != 0
}

// DisplayName returns the title, or the feed URL when the feed has no title.
func (p *Podcast) DisplayName() string {
	if p.FeedTitle != "" {
		return p.FeedTitle
	}
	return p.FeedURL
}

// PodcastUpdateInfo reports how many new episodes one sync pass found for a podcast.
type PodcastUpdateInfo struct {
	FeedURL  string `json:"feed_url"`
	Name     string `json:"name"`
	NewCount int    `json:"new_count"`
}
