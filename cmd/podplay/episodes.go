// ABOUTME: Episodes command for listing stored episodes across subscriptions
// ABOUTME: Supports filtering by podcast and by release window (today, yesterday, week, month)

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/harper/podplay/internal/config"
	"github.com/harper/podplay/internal/models"
	"github.com/harper/podplay/internal/storage"
	"github.com/harper/podplay/internal/timeutil"
)

var periodFlags = []string{"today", "yesterday", "week", "month"}

var episodesCmd = &cobra.Command{
	Use:     "episodes",
	Aliases: []string{"eps", "e"},
	Short:   "List stored episodes",
	Long:    "List stored episodes newest first, optionally filtered by podcast and release date",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		podcastURL, _ := cmd.Flags().GetString("podcast")
		limit, _ := cmd.Flags().GetInt("limit")

		filter, err := episodeFilter(cmd, time.Now())
		if err != nil {
			return err
		}
		if limit > 0 {
			filter.Limit = &limit
		}

		if podcastURL != "" {
			p, err := store.LoadPodcastByURL(ctx, podcastURL)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("not subscribed: %s", podcastURL)
			}
			if err != nil {
				return fmt.Errorf("failed to load podcast: %w", err)
			}
			filter.PodcastID = &p.ID
		}

		episodes, err := store.ListEpisodes(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list episodes: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(episodes) == 0 {
			fmt.Fprintln(out, "No episodes found")
			return nil
		}

		podcasts, err := repo.Podcasts(ctx)
		if err != nil {
			return err
		}
		byID := lo.KeyBy(podcasts, func(p *models.Podcast) int64 { return p.ID })

		for _, e := range episodes {
			name := ""
			if podcastURL == "" {
				if p, ok := byID[e.PodcastID]; ok {
					name = p.DisplayName()
				}
			}
			printEpisodeLine(out, e, name)
		}
		return nil
	},
}

// episodeFilter builds the release-date window from the period flags.
func episodeFilter(cmd *cobra.Command, now time.Time) (*storage.EpisodeFilter, error) {
	filter := &storage.EpisodeFilter{}
	for _, period := range periodFlags {
		set, _ := cmd.Flags().GetBool(period)
		if !set {
			continue
		}
		w, ok := timeutil.ParsePeriod(period, now)
		if !ok {
			return nil, fmt.Errorf("unknown period %q", period)
		}
		filter.Since, filter.Until = w.Since, w.Until
	}
	return filter, nil
}

func init() {
	rootCmd.AddCommand(episodesCmd)

	episodesCmd.Flags().StringP("podcast", "p", "", "only episodes of this subscribed feed URL")
	episodesCmd.Flags().IntP("limit", "n", config.DefaultListLimit, "max episodes to show (0 for all)")
	episodesCmd.Flags().Bool("today", false, "only episodes released today")
	episodesCmd.Flags().Bool("yesterday", false, "only episodes released yesterday")
	episodesCmd.Flags().Bool("week", false, "only episodes released this week")
	episodesCmd.Flags().Bool("month", false, "only episodes released this month")

	episodesCmd.MarkFlagsMutuallyExclusive(periodFlags...)
}
