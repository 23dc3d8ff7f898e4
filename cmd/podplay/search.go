// ABOUTME: Search command for finding podcasts in the iTunes directory
// ABOUTME: Lists matching shows and can subscribe to one, taking its directory artwork

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/podplay/internal/config"
	"github.com/harper/podplay/internal/search"
)

var searchCmd = &cobra.Command{
	Use:     "search <term>",
	Aliases: []string{"find"},
	Short:   "Search the podcast directory",
	Long: `Search the iTunes podcast directory by name, author or topic.

Use --subscribe N to subscribe to the Nth result. Its directory artwork is
stored with the podcast.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		limit, _ := cmd.Flags().GetInt("limit")
		pick, _ := cmd.Flags().GetInt("subscribe")

		results, err := newSearchClient().SearchLimit(ctx, strings.Join(args, " "), limit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if pick == 0 {
			printSearchResults(out, results)
			return nil
		}

		if pick < 0 || pick > len(results) {
			return fmt.Errorf("--subscribe %d: got %d result(s)", pick, len(results))
		}
		chosen := results[pick-1]

		p, err := repo.Subscribe(ctx, chosen.FeedURL, chosen.ImageURL)
		if err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}

		bold := color.New(color.Bold).SprintFunc()
		fmt.Fprintf(out, "Subscribed to %s (%d episodes)\n", bold(p.DisplayName()), len(p.Episodes))
		return nil
	},
}

// newSearchClient builds a directory client from the loaded config.
func newSearchClient() *search.Client {
	return search.New(nil,
		search.WithEndpoint(cfg.SearchURL),
		search.WithCountry(cfg.SearchCountry),
	)
}

// printSearchResults prints numbered results for use with --subscribe.
func printSearchResults(out io.Writer, results []search.Result) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No podcasts found")
		return
	}

	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	for i, r := range results {
		line := fmt.Sprintf("%2d. %s", i+1, bold(r.Name))
		if r.Artist != "" {
			line += " by " + r.Artist
		}
		fmt.Fprintln(out, line)

		var meta []string
		if r.Genre != "" {
			meta = append(meta, r.Genre)
		}
		if r.EpisodeCount > 0 {
			meta = append(meta, fmt.Sprintf("%d episodes", r.EpisodeCount))
		}
		if r.LastUpdated != nil {
			meta = append(meta, "updated "+r.LastUpdated.Local().Format(config.DateFormatShort))
		}
		if len(meta) > 0 {
			fmt.Fprintf(out, "    %s\n", faint(strings.Join(meta, " · ")))
		}
		fmt.Fprintf(out, "    %s\n", faint(r.FeedURL))
	}
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntP("limit", "n", search.DefaultLimit, "maximum number of results")
	searchCmd.Flags().Int("subscribe", 0, "subscribe to the Nth result")
}
