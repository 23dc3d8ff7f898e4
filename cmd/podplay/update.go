// ABOUTME: Update command for fetching new episodes of subscribed podcasts
// ABOUTME: Updates every subscription or a single feed and reports podcasts that gained episodes

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/podplay/internal/models"
)

var updateCmd = &cobra.Command{
	Use:     "update [url]",
	Aliases: []string{"sync", "refresh"},
	Short:   "Fetch new episodes",
	Long:    "Fetch new episodes for every subscription, or for a single subscribed feed URL",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			info, err := repo.UpdatePodcast(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to update %s: %w", args[0], err)
			}
			var updates []models.PodcastUpdateInfo
			if info.NewCount > 0 {
				updates = append(updates, *info)
			}
			printUpdates(out, updates)
			return nil
		}

		updates, err := repo.UpdateAll(ctx)
		printUpdates(out, updates)
		if err != nil {
			return fmt.Errorf("some podcasts failed to update: %w", err)
		}
		return nil
	},
}

// printUpdates prints one line per podcast that gained episodes.
func printUpdates(out io.Writer, updates []models.PodcastUpdateInfo) {
	if len(updates) == 0 {
		fmt.Fprintln(out, "no new episodes")
		return
	}

	green := color.New(color.FgGreen).SprintFunc()
	for _, u := range updates {
		name := u.Name
		if name == "" {
			name = u.FeedURL
		}
		fmt.Fprintf(out, "%s %s: %d new episode(s)\n", green("+"), name, u.NewCount)
	}
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
