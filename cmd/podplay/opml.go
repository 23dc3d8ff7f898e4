// ABOUTME: OPML import and export of podcast subscriptions
// ABOUTME: Import subscribes to every feed in a file; export writes current subscriptions

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harper/podplay/internal/opml"
	"github.com/harper/podplay/internal/storage"
)

const exportTitle = "podplay subscriptions"

var importCmd = &cobra.Command{
	Use:   "import <file.opml>",
	Short: "Subscribe to every podcast in an OPML file",
	Long:  "Import subscriptions from another podcast app. Feeds already subscribed are skipped.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		doc, err := opml.ParseFile(args[0])
		if err != nil {
			return err
		}

		var (
			added, skipped int
			result         *multierror.Error
		)
		for _, f := range doc.Feeds {
			if ctx.Err() != nil {
				result = multierror.Append(result, ctx.Err())
				break
			}

			if _, err := store.LoadPodcastByURL(ctx, f.URL); err == nil {
				skipped++
				continue
			} else if !errors.Is(err, storage.ErrNotFound) {
				result = multierror.Append(result, err)
				continue
			}

			p, err := repo.Subscribe(ctx, f.URL, "")
			if err != nil {
				log.WithField("feed_url", f.URL).WithError(err).Warn("import failed")
				result = multierror.Append(result, fmt.Errorf("%s: %w", f.URL, err))
				continue
			}
			added++
			fmt.Fprintf(out, "Subscribed to %s\n", p.DisplayName())
		}

		fmt.Fprintf(out, "\nImported %d, skipped %d, failed %d\n", added, skipped, lenErrors(result))
		return result.ErrorOrNil()
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export subscriptions as OPML",
	Long:  "Write subscriptions as OPML to stdout or a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		podcasts, err := repo.Podcasts(cmd.Context())
		if err != nil {
			return err
		}

		doc := opml.FromPodcasts(exportTitle, podcasts)
		if output == "" {
			return doc.Write(cmd.OutOrStdout())
		}

		if err := doc.WriteFile(output); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d subscription(s) to %s\n", len(doc.Feeds), output)
		return nil
	},
}

func lenErrors(err *multierror.Error) int {
	if err == nil {
		return 0
	}
	return len(err.Errors)
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
}
