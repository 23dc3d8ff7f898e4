// ABOUTME: SQL storage implementation over sqlx for SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq)
// ABOUTME: Queries are written with ? placeholders and rebound per driver

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/harper/podplay/internal/models"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS podcasts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		feed_url TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		last_updated TEXT NOT NULL DEFAULT '',
		subscribed INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS episodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		podcast_id INTEGER NOT NULL REFERENCES podcasts(id) ON DELETE CASCADE,
		guid TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		media_url TEXT NOT NULL DEFAULT '',
		mime_type TEXT NOT NULL DEFAULT '',
		release_date TIMESTAMP,
		duration TEXT NOT NULL DEFAULT '',
		UNIQUE(podcast_id, guid)
	);

	CREATE INDEX IF NOT EXISTS idx_episodes_podcast_id ON episodes(podcast_id);
	CREATE INDEX IF NOT EXISTS idx_episodes_release_date ON episodes(release_date);
`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS podcasts (
		id BIGSERIAL PRIMARY KEY,
		feed_url TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		last_updated TEXT NOT NULL DEFAULT '',
		subscribed BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS episodes (
		id BIGSERIAL PRIMARY KEY,
		podcast_id BIGINT NOT NULL REFERENCES podcasts(id) ON DELETE CASCADE,
		guid TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		media_url TEXT NOT NULL DEFAULT '',
		mime_type TEXT NOT NULL DEFAULT '',
		release_date TIMESTAMPTZ,
		duration TEXT NOT NULL DEFAULT '',
		UNIQUE(podcast_id, guid)
	);

	CREATE INDEX IF NOT EXISTS idx_episodes_podcast_id ON episodes(podcast_id);
	CREATE INDEX IF NOT EXISTS idx_episodes_release_date ON episodes(release_date);
`

const (
	podcastColumns = `id, feed_url, title, description, image_url, last_updated, subscribed`
	episodeColumns = `podcast_id, guid, title, description, media_url, mime_type, release_date, duration`
)

// SQLStore implements the Store interface on a relational database.
type SQLStore struct {
	db *sqlx.DB
}

type podcastRow struct {
	ID          int64  `db:"id"`
	FeedURL     string `db:"feed_url"`
	Title       string `db:"title"`
	Description string `db:"description"`
	ImageURL    string `db:"image_url"`
	LastUpdated string `db:"last_updated"`
	Subscribed  bool   `db:"subscribed"`
}

type episodeRow struct {
	PodcastID   int64        `db:"podcast_id"`
	GUID        string       `db:"guid"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	MediaURL    string       `db:"media_url"`
	MimeType    string       `db:"mime_type"`
	ReleaseDate sql.NullTime `db:"release_date"`
	Duration    string       `db:"duration"`
}

// NewSQLiteStore creates a SQLite-backed store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	// WAL for concurrent readers, foreign keys for episode cascade
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	return newSQLStore("sqlite", dsn, sqliteSchema)
}

// NewPostgresStore creates a PostgreSQL-backed store from a connection string.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	return newSQLStore("postgres", dsn, postgresSchema)
}

func newSQLStore(driver, dsn, schema string) (*SQLStore, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == "sqlite" {
		// SQLite allows a single writer; serialize through one connection
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Podcast Operations

// LoadPodcastByURL finds a podcast by its feed URL.
func (s *SQLStore) LoadPodcastByURL(ctx context.Context, feedURL string) (*models.Podcast, error) {
	query := s.db.Rebind(`SELECT ` + podcastColumns + ` FROM podcasts WHERE feed_url = ?`)
	return s.getPodcast(ctx, query, feedURL)
}

// LoadPodcast retrieves a podcast by ID.
func (s *SQLStore) LoadPodcast(ctx context.Context, id int64) (*models.Podcast, error) {
	query := s.db.Rebind(`SELECT ` + podcastColumns + ` FROM podcasts WHERE id = ?`)
	return s.getPodcast(ctx, query, id)
}

// InsertPodcast stores a new subscribed podcast and returns its ID.
func (s *SQLStore) InsertPodcast(ctx context.Context, p *models.Podcast) (int64, error) {
	query := s.db.Rebind(`
		INSERT INTO podcasts (feed_url, title, description, image_url, last_updated, subscribed)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	var id int64
	err := s.db.QueryRowxContext(ctx, query,
		p.FeedURL, p.FeedTitle, p.FeedDescription, p.ImageURL, p.LastUpdated, true,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert podcast: %w", wrapConstraint(err))
	}

	p.ID = id
	p.Subscribed = true
	return id, nil
}

// DeletePodcast removes a podcast and all its episodes (cascade).
func (s *SQLStore) DeletePodcast(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM podcasts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete podcast: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("podcast %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListSubscribedPodcasts returns subscribed podcasts in insertion order.
func (s *SQLStore) ListSubscribedPodcasts(ctx context.Context) ([]*models.Podcast, error) {
	query := s.db.Rebind(`SELECT ` + podcastColumns + ` FROM podcasts WHERE subscribed = ? ORDER BY id`)

	var rows []podcastRow
	if err := s.db.SelectContext(ctx, &rows, query, true); err != nil {
		return nil, fmt.Errorf("query podcasts: %w", err)
	}

	podcasts := make([]*models.Podcast, 0, len(rows))
	for _, row := range rows {
		podcasts = append(podcasts, row.toModel())
	}
	return podcasts, nil
}

// Episode Operations

// LoadEpisodes returns a podcast's episodes in insertion order.
func (s *SQLStore) LoadEpisodes(ctx context.Context, podcastID int64) ([]*models.Episode, error) {
	query := s.db.Rebind(`SELECT ` + episodeColumns + ` FROM episodes WHERE podcast_id = ? ORDER BY id`)
	return s.selectEpisodes(ctx, query, podcastID)
}

// InsertEpisode stores a single episode.
func (s *SQLStore) InsertEpisode(ctx context.Context, e *models.Episode) error {
	return insertEpisode(ctx, s.db, e.PodcastID, e)
}

// InsertEpisodes stores a batch of episodes in one transaction.
func (s *SQLStore) InsertEpisodes(ctx context.Context, podcastID int64, episodes []*models.Episode) error {
	if len(episodes) == 0 {
		return nil
	}

	return s.withTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, e := range episodes {
			if err := insertEpisode(ctx, tx, podcastID, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListEpisodes returns episodes matching the filter, newest first.
func (s *SQLStore) ListEpisodes(ctx context.Context, filter *EpisodeFilter) ([]*models.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes`

	var conditions []string
	var args []interface{}

	if filter != nil {
		if filter.PodcastID != nil {
			conditions = append(conditions, "podcast_id = ?")
			args = append(args, *filter.PodcastID)
		}

		if filter.Since != nil {
			conditions = append(conditions, "release_date >= ?")
			args = append(args, filter.Since.UTC())
		}

		if filter.Until != nil {
			conditions = append(conditions, "release_date < ?")
			args = append(args, filter.Until.UTC())
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY release_date DESC NULLS LAST, id DESC"

	if filter != nil && filter.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *filter.Limit)
	}

	return s.selectEpisodes(ctx, s.db.Rebind(query), args...)
}

// Statistics

// Stats returns overall podcast and episode counts.
func (s *SQLStore) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats

	if err := s.db.GetContext(ctx, &stats.Podcasts, `SELECT COUNT(*) FROM podcasts`); err != nil {
		return nil, fmt.Errorf("count podcasts: %w", err)
	}

	if err := s.db.GetContext(ctx, &stats.Episodes, `SELECT COUNT(*) FROM episodes`); err != nil {
		return nil, fmt.Errorf("count episodes: %w", err)
	}

	return &stats, nil
}

// Helper functions

func (s *SQLStore) withTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertEpisode(ctx context.Context, exec sqlx.ExtContext, podcastID int64, e *models.Episode) error {
	query := exec.Rebind(`
		INSERT INTO episodes (` + episodeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := exec.ExecContext(ctx, query,
		podcastID, e.GUID, e.Title, e.Description, e.MediaURL, e.MimeType,
		timeToSQL(e.ReleaseDate), e.Duration,
	)
	if err != nil {
		return fmt.Errorf("insert episode %q: %w", e.GUID, wrapConstraint(err))
	}
	return nil
}

func (s *SQLStore) getPodcast(ctx context.Context, query string, arg interface{}) (*models.Podcast, error) {
	var row podcastRow
	if err := s.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan podcast: %w", err)
	}
	return row.toModel(), nil
}

func (s *SQLStore) selectEpisodes(ctx context.Context, query string, args ...interface{}) ([]*models.Episode, error) {
	var rows []episodeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}

	episodes := make([]*models.Episode, 0, len(rows))
	for _, row := range rows {
		episodes = append(episodes, row.toModel())
	}
	return episodes, nil
}

func (r podcastRow) toModel() *models.Podcast {
	return &models.Podcast{
		ID:              r.ID,
		FeedURL:         r.FeedURL,
		FeedTitle:       r.Title,
		FeedDescription: r.Description,
		ImageURL:        r.ImageURL,
		LastUpdated:     r.LastUpdated,
		Subscribed:      r.Subscribed,
	}
}

func (r episodeRow) toModel() *models.Episode {
	e := &models.Episode{
		PodcastID:   r.PodcastID,
		GUID:        r.GUID,
		Title:       r.Title,
		Description: r.Description,
		MediaURL:    r.MediaURL,
		MimeType:    r.MimeType,
		Duration:    r.Duration,
	}
	if r.ReleaseDate.Valid {
		t := r.ReleaseDate.Time.UTC()
		e.ReleaseDate = &t
	}
	return e
}

// wrapConstraint maps unique and foreign key violations onto the package sentinels.
func wrapConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Message)
		case "23503":
			return fmt.Errorf("%w: %s", ErrNotFound, pqErr.Message)
		}
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s", ErrDuplicate, msg)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	return err
}

func timeToSQL(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

var _ Store = (*SQLStore)(nil)
