// ABOUTME: Show command for viewing a podcast and its episodes
// ABOUTME: Renders show notes as Markdown in the terminal with glamour

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/podplay/internal/config"
	"github.com/harper/podplay/internal/content"
	"github.com/harper/podplay/internal/models"
	"github.com/harper/podplay/internal/timeutil"
)

var showCmd = &cobra.Command{
	Use:   "show <url>",
	Short: "Show a podcast",
	Long:  "Show a podcast and its latest episodes. Stored podcasts are read locally; other URLs are fetched as a preview.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		plain, _ := cmd.Flags().GetBool("plain")
		out := cmd.OutOrStdout()

		p, err := repo.GetPodcast(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if p == nil {
			fmt.Fprintln(out, "could not load feed")
			return nil
		}

		printPodcast(out, p, limit, plain)
		return nil
	},
}

func printPodcast(out io.Writer, p *models.Podcast, limit int, plain bool) {
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintln(out, strings.Repeat("─", config.SeparatorWidth))
	fmt.Fprintf(out, "%s\n\n", bold(p.DisplayName()))
	fmt.Fprintf(out, "%s %s\n", faint("Feed:"), cyan(p.FeedURL))
	if p.ImageURL != "" {
		fmt.Fprintf(out, "%s %s\n", faint("Artwork:"), p.ImageURL)
	}
	if p.LastUpdated != "" {
		fmt.Fprintf(out, "%s %s\n", faint("Updated:"), p.LastUpdated)
	}
	if p.Subscribed {
		fmt.Fprintf(out, "%s %s\n", faint("Status:"), "subscribed")
	} else {
		fmt.Fprintf(out, "%s %s\n", faint("Status:"), "preview")
	}
	fmt.Fprintln(out, strings.Repeat("─", config.SeparatorWidth))

	if p.FeedDescription != "" {
		fmt.Fprint(out, renderNotes(p.FeedDescription, plain))
	}

	fmt.Fprintf(out, "\n%s\n", bold(fmt.Sprintf("%d episode(s)", len(p.Episodes))))
	episodes := p.Episodes
	if limit > 0 && len(episodes) > limit {
		episodes = episodes[:limit]
	}
	for _, e := range episodes {
		printEpisodeLine(out, e, "")
	}
	if len(episodes) < len(p.Episodes) {
		fmt.Fprintln(out, faint(fmt.Sprintf("... and %d more", len(p.Episodes)-len(episodes))))
	}
}

// renderNotes converts HTML show notes to Markdown and renders them for the terminal.
func renderNotes(notes string, plain bool) string {
	markdown := content.ToMarkdown(notes)
	if plain {
		return "\n" + markdown + "\n"
	}

	rendered, err := glamour.Render(markdown, "dark")
	if err != nil {
		return "\n" + markdown + "\n"
	}
	return rendered
}

// printEpisodeLine prints one episode as a single line, optionally prefixed with its podcast.
func printEpisodeLine(out io.Writer, e *models.Episode, podcastName string) {
	faint := color.New(color.Faint).SprintFunc()

	date := "          "
	if e.ReleaseDate != nil {
		date = e.ReleaseDate.Local().Format("2006-01-02")
	}
	fmt.Fprint(out, faint(date), " ")

	if podcastName != "" {
		fmt.Fprint(out, color.New(color.FgCyan).Sprint(podcastName), " · ")
	}

	title := e.Title
	if title == "" {
		title = "Untitled"
	}
	fmt.Fprint(out, title)

	if e.Duration != "" {
		fmt.Fprint(out, " ", faint("("+timeutil.FormatDuration(e.Duration)+")"))
	}
	fmt.Fprintln(out)
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().IntP("limit", "n", config.DefaultListLimit, "max episodes to show (0 for all)")
	showCmd.Flags().Bool("plain", false, "print show notes as Markdown without terminal styling")
}
