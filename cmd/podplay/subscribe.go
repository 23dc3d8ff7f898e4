// ABOUTME: Subscription commands for adding, removing, and listing podcasts
// ABOUTME: Subscribe discovers feeds from show pages and stores every current episode

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/podplay/internal/discover"
	"github.com/harper/podplay/internal/parse"
	"github.com/harper/podplay/internal/storage"
)

var subscribeCmd = &cobra.Command{
	Use:     "subscribe <url>",
	Aliases: []string{"sub", "add"},
	Short:   "Subscribe to a podcast",
	Long:    "Subscribe to a podcast by feed URL or show website. All current episodes are stored.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		noDiscover, _ := cmd.Flags().GetBool("no-discover")
		out := cmd.OutOrStdout()

		feedURL, imageURL := args[0], ""
		var raw *parse.FeedData
		if !noDiscover {
			found, err := discover.New(nil).Discover(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to find a podcast feed: %w", err)
			}
			if found.URL != args[0] {
				fmt.Fprintf(out, "Discovered feed: %s\n", found.URL)
			}
			feedURL, imageURL, raw = found.URL, found.ImageURL, found.Feed
		}

		if existing, err := store.LoadPodcastByURL(ctx, feedURL); err == nil {
			fmt.Fprintf(out, "Already subscribed to %s\n", existing.DisplayName())
			return nil
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to check subscriptions: %w", err)
		}

		p, err := repo.SubscribeFeed(ctx, feedURL, imageURL, raw)
		if err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}

		bold := color.New(color.Bold).SprintFunc()
		fmt.Fprintf(out, "Subscribed to %s (%d episodes)\n", bold(p.DisplayName()), len(p.Episodes))
		return nil
	},
}

var unsubscribeCmd = &cobra.Command{
	Use:     "unsubscribe <url>",
	Aliases: []string{"unsub", "remove"},
	Short:   "Unsubscribe from a podcast",
	Long:    "Remove a podcast and all of its stored episodes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, err := store.LoadPodcastByURL(ctx, args[0])
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("not subscribed: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to load podcast: %w", err)
		}

		name := p.DisplayName()
		if err := repo.Delete(ctx, p); err != nil {
			return fmt.Errorf("failed to unsubscribe: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Unsubscribed from %s\n", name)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subscribed podcasts",
	Long:    "List subscribed podcasts in the order they were added",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		podcasts, err := repo.Podcasts(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(podcasts) == 0 {
			fmt.Fprintln(out, "No subscriptions. Add one with 'podplay subscribe <url>'")
			return nil
		}

		faint := color.New(color.Faint).SprintFunc()
		fmt.Fprintf(out, "%d subscription(s):\n\n", len(podcasts))
		for _, p := range podcasts {
			fmt.Fprintln(out, p.DisplayName())
			fmt.Fprintf(out, "  %s\n\n", faint(p.FeedURL))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(unsubscribeCmd)
	rootCmd.AddCommand(listCmd)

	subscribeCmd.Flags().Bool("no-discover", false, "treat the URL as a feed and skip discovery")
}
