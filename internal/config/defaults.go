// ABOUTME: Centralized configuration defaults for podplay
// ABOUTME: Contains magic numbers and hardcoded values for scheduling, display and storage

package config

// Sync settings
const (
	DefaultSchedule    = "@every 30m"
	DefaultConcurrency = 4
	DefaultLogLevel    = "info"
)

// Display settings
const (
	DefaultListLimit = 20
	SeparatorWidth   = 60
	DateFormatShort  = "02 Jan 06 15:04 MST"
	DateFormatLong   = "Mon, 02 Jan 2006 15:04 MST"
)

// Storage settings
const (
	DefaultDBFilename = "podplay.db"
	DefaultBadgerDir  = "badger"
	DefaultDirPerms   = 0755
)

// AMQP settings
const (
	DefaultAMQPExchange   = "podplay"
	DefaultAMQPRoutingKey = "events"
	DefaultAMQPQueue      = "podplay_events"
)

// OPML settings
const (
	OPMLVersion = "2.0"
)
