// ABOUTME: Serve command that runs scheduled updates until interrupted
// ABOUTME: Uses cron for scheduling and logs change events from the notification broker

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harper/podplay/internal/notify"
	"github.com/harper/podplay/internal/podcast"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled updates",
	Long:  "Run updates on the configured cron schedule until interrupted. Change events are logged and published to AMQP when configured.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schedule, _ := cmd.Flags().GetString("schedule")
		if schedule == "" {
			schedule = cfg.Schedule
		}
		skipInitial, _ := cmd.Flags().GetBool("no-initial")

		return runServe(cmd.Context(), repo, broker, schedule, !skipInitial)
	},
}

func runServe(ctx context.Context, repo *podcast.Repo, broker *notify.Broker, schedule string, initial bool) error {
	logger := cron.PrintfLogger(log.StandardLogger())
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)

	group, ctx := errgroup.WithContext(ctx)

	update := func() {
		updates, err := repo.UpdateAll(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("scheduled update failed")
		}
		log.WithField("updated", len(updates)).Debug("scheduled update done")
	}

	if _, err := c.AddFunc(schedule, update); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	events, unsubscribe := broker.Subscribe(64)
	defer unsubscribe()

	group.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				log.WithFields(log.Fields{
					"kind":     ev.Kind,
					"feed_url": ev.FeedURL,
					"new":      ev.NewCount,
				}).Info(ev.Title)
			}
		}
	})

	group.Go(func() error {
		defer func() {
			log.Info("shutting down scheduler")
			<-c.Stop().Done()
		}()

		if initial {
			update()
		}
		c.Start()
		log.WithField("schedule", schedule).Info("scheduler started")

		<-ctx.Done()
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	log.Info("gracefully stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("schedule", "", "cron spec overriding the configured schedule")
	serveCmd.Flags().Bool("no-initial", false, "wait for the first scheduled run instead of updating at startup")
}
