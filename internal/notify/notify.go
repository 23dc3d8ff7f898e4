// ABOUTME: Change notifications emitted by the sync engine
// ABOUTME: Replaces observable query results with explicit events that subscribers can react to

package notify

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Kind identifies what changed.
type Kind string

const (
	PodcastSaved   Kind = "podcast.saved"
	PodcastDeleted Kind = "podcast.deleted"
	EpisodesAdded  Kind = "episodes.added"
)

// Event describes one change to the subscription set.
type Event struct {
	Kind      Kind      `json:"kind"`
	PodcastID int64     `json:"podcast_id"`
	FeedURL   string    `json:"feed_url"`
	Title     string    `json:"title"`
	NewCount  int       `json:"new_count,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier receives change events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Event) error { return nil }

// Multi fans an event out to several notifiers.
type Multi []Notifier

// Notify delivers the event to every notifier and collects their errors.
func (m Multi) Notify(ctx context.Context, event Event) error {
	var result *multierror.Error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
