package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/backline/backline/internal/models"
	"github.com/backline/backline/internal/shared"
)

// AnalyticsRepository persists normalized track stats from sync runs.
type AnalyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository creates a new [AnalyticsRepository] with the given database connection
func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// UpsertTracks writes one row per track keyed on (user_id, platform, track_id).
//
// Every sync persists its snapshot this way; re-synced tracks update in place.
func (r *AnalyticsRepository) UpsertTracks(userID string, platform models.PlatformKind, tracks []models.TrackStat, syncedAt time.Time) error {
	if len(tracks) == 0 {
		return nil
	}

	query := `
		INSERT INTO analytics_tracks (id, user_id, platform, track_id, name, artist, popularity, preview_url, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, platform, track_id) DO UPDATE SET
			name = excluded.name,
			artist = excluded.artist,
			popularity = excluded.popularity,
			preview_url = excluded.preview_url,
			synced_at = excluded.synced_at
	`

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, track := range tracks {
		if track.ID == "" {
			continue
		}
		_, err := tx.Exec(query,
			shared.GenerateID(), userID, string(platform), track.ID,
			track.Name, track.Artist, track.Popularity, track.PreviewURL, syncedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert track %s: %w", track.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analytics upsert: %w", err)
	}

	return nil
}

// TopTracks retrieves the stored ranking for a (user, platform) pair, descending by popularity.
func (r *AnalyticsRepository) TopTracks(userID string, platform models.PlatformKind, limit int) ([]models.TrackStat, error) {
	if limit <= 0 {
		limit = models.TopTrackLimit
	}

	query := `
		SELECT track_id, name, artist, popularity, preview_url
		FROM analytics_tracks
		WHERE user_id = ? AND platform = ?
		ORDER BY popularity DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, userID, string(platform), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.TrackStat
	for rows.Next() {
		var track models.TrackStat
		var artist, previewURL sql.NullString
		if err := rows.Scan(&track.ID, &track.Name, &artist, &track.Popularity, &previewURL); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		track.Artist = artist.String
		track.PreviewURL = previewURL.String
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}
