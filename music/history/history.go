// Package history persists completed downloads to Postgres. The feature is
// optional: when no database is configured the engine simply runs without a
// recorder.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/soundfetch/tunebot/core/logger"
	"github.com/soundfetch/tunebot/music/catalog"
)

// Entry is one completed download.
type Entry struct {
	ID          int64     `db:"id"`
	UserID      string    `db:"user_id"`
	TrackID     string    `db:"track_id"`
	Title       string    `db:"title"`
	Artist      string    `db:"artist"`
	Album       string    `db:"album"`
	QualityName string    `db:"quality_name"`
	FilePath    string    `db:"file_path"`
	FileSize    string    `db:"file_size"`
	CreatedAt   time.Time `db:"created_at"`
}

// Service reads and writes download history.
type Service struct {
	db *sqlx.DB
}

// NewService wraps an open connection pool.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

const insertQuery = `
	INSERT INTO downloads (user_id, track_id, title, artist, album, quality_name, file_path, file_size)
	VALUES (:user_id, :track_id, :title, :artist, :album, :quality_name, :file_path, :file_size)`

// RecordDownload stores one completed download.
func (s *Service) RecordDownload(ctx context.Context, userID string, track catalog.Track, out *catalog.Outcome) error {
	entry := Entry{
		UserID:      userID,
		TrackID:     track.ID,
		Title:       out.Title,
		Artist:      out.Artist,
		Album:       out.Album,
		QualityName: out.QualityName,
		FilePath:    out.FilePath,
		FileSize:    out.FileSize,
	}
	if _, err := s.db.NamedExecContext(ctx, insertQuery, entry); err != nil {
		return fmt.Errorf("record download: %w", err)
	}
	logger.Debug(ctx, "history", "download.recorded",
		slog.String("user_id", userID),
		slog.String("track_id", track.ID),
	)
	return nil
}

// Recent returns the user's latest downloads, newest first.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []Entry
	err := s.db.SelectContext(ctx, &entries,
		`SELECT id, user_id, track_id, title, artist, album, quality_name, file_path, file_size, created_at
		 FROM downloads WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load download history: %w", err)
	}
	return entries, nil
}

// FormatRecent renders history entries as a message. An empty history gets
// its own text.
func FormatRecent(entries []Entry) string {
	if len(entries) == 0 {
		return "You have no downloads yet. Send /music <keywords> to get started."
	}
	var b strings.Builder
	b.WriteString("📥 Your recent downloads:\n\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s - %s", i+1, e.Title, e.Artist)
		if e.QualityName != "" {
			fmt.Fprintf(&b, " (%s)", e.QualityName)
		}
		b.WriteString("\n")
	}
	return b.String()
}
