// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads config, configures logging, and opens the store and sync engine

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harper/podplay/internal/config"
	"github.com/harper/podplay/internal/feed"
	"github.com/harper/podplay/internal/fetch"
	"github.com/harper/podplay/internal/notify"
	"github.com/harper/podplay/internal/podcast"
	"github.com/harper/podplay/internal/storage"
)

// skipStoreAnnotation marks commands that run without opening the store
const skipStoreAnnotation = "podplay/skip-store"

var (
	debug     bool
	cfg       *config.Config
	store     storage.Store
	repo      *podcast.Repo
	broker    *notify.Broker
	publisher *notify.AMQPPublisher
)

var rootCmd = &cobra.Command{
	Use:   "podplay",
	Short: "Podcast subscription and sync engine with MCP integration",
	Long: `
██████╗  ██████╗ ██████╗ ██████╗ ██╗      █████╗ ██╗   ██╗
██╔══██╗██╔═══██╗██╔══██╗██╔══██╗██║     ██╔══██╗╚██╗ ██╔╝
██████╔╝██║   ██║██║  ██║██████╔╝██║     ███████║ ╚████╔╝
██╔═══╝ ██║   ██║██║  ██║██╔═══╝ ██║     ██╔══██║  ╚██╔╝
██║     ╚██████╔╝██████╔╝██║     ███████╗██║  ██║   ██║
╚═╝      ╚═════╝ ╚═════╝ ╚═╝     ╚══════╝╚═╝  ╚═╝   ╚═╝

Podcast subscriptions for humans and AI agents.

Subscribe to shows, keep episodes up to date, and expose them via MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := configureLogging(cfg.LogLevel, debug); err != nil {
			return err
		}

		if cmd.Annotations[skipStoreAnnotation] == "true" {
			return nil
		}

		store, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}

		notifier, err := buildNotifier(cfg)
		if err != nil {
			return err
		}

		repo = podcast.New(
			feed.NewService(fetch.NewClient()),
			store,
			podcast.WithLogger(log.WithField("component", "engine")),
			podcast.WithConcurrency(cfg.Concurrency),
			podcast.WithNotifier(notifier),
		)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeResources()
	},
}

// Execute runs the root command with a context canceled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if closeErr := closeResources(); err == nil {
		err = closeErr
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func configureLogging(level string, debug bool) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	log.SetOutput(os.Stderr)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log_level %q: %w", level, err)
	}
	if debug {
		lvl = log.DebugLevel
	}
	log.SetLevel(lvl)
	return nil
}

// buildNotifier always includes the in-process broker and adds AMQP publishing when configured.
func buildNotifier(c *config.Config) (notify.Notifier, error) {
	broker = notify.NewBroker()
	notifiers := notify.Multi{broker}

	if c.AMQPEnabled() {
		var err error
		publisher, err = notify.NewAMQPPublisher(c.AMQP, log.WithField("component", "amqp"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to AMQP: %w", err)
		}
		notifiers = append(notifiers, publisher)
	}
	return notifiers, nil
}

// closeResources releases the store and AMQP connection. Safe to call more than once.
func closeResources() error {
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("failed to close AMQP publisher")
		}
		publisher = nil
	}
	if store != nil {
		err := store.Close()
		store = nil
		if err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
