package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/backline/backline/internal/models"
	"github.com/backline/backline/internal/shared"
)

// ConnectionRepository persists [models.PlatformConnection] rows.
type ConnectionRepository struct {
	db *sql.DB
}

// NewConnectionRepository creates a new [ConnectionRepository] with the given database connection
func NewConnectionRepository(db *sql.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Upsert inserts or replaces the connection keyed on (user_id, platform).
//
// This is the invariant guard: at most one active connection per pair.
// Concurrent writes are last-write-wins.
func (r *ConnectionRepository) Upsert(conn *models.PlatformConnection) error {
	if err := conn.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	if conn.ID == "" {
		sequence, err := NextSequence(r.db, "platform_connections")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}
		conn.ID = shared.GenerateID()
		conn.Sequence = sequence
		conn.CreatedAt = now
	}
	conn.UpdatedAt = now

	query := `
		INSERT INTO platform_connections
			(id, sequence, user_id, platform, access_token, refresh_token, expires_at, platform_user_id, active, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, platform) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			platform_user_id = COALESCE(excluded.platform_user_id, platform_user_id),
			active = excluded.active,
			updated_at = excluded.updated_at
	`

	var platformUserID any
	if conn.PlatformUserID != "" {
		platformUserID = conn.PlatformUserID
	}
	var lastSynced any
	if conn.LastSyncedAt != nil {
		lastSynced = *conn.LastSyncedAt
	}

	_, err := r.db.Exec(query,
		conn.ID, conn.Sequence, conn.UserID, string(conn.Platform),
		conn.AccessToken, conn.RefreshToken, conn.ExpiresAt, platformUserID,
		conn.Active, lastSynced, conn.CreatedAt, conn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert connection: %w", err)
	}

	return nil
}

// GetActive retrieves the active connection for a (user, platform) pair.
func (r *ConnectionRepository) GetActive(userID string, platform models.PlatformKind) (*models.PlatformConnection, error) {
	query := `
		SELECT id, sequence, user_id, platform, access_token, refresh_token, expires_at, platform_user_id, active, last_synced_at, created_at, updated_at
		FROM platform_connections
		WHERE user_id = ? AND platform = ? AND active = 1
	`

	conn, err := scanConnection(r.db.QueryRow(query, userID, string(platform)))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s for user %s", shared.ErrNotConnected, platform, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query connection: %w", err)
	}

	return conn, nil
}

// SaveTokens persists refreshed credentials for an existing connection.
func (r *ConnectionRepository) SaveTokens(conn *models.PlatformConnection) error {
	now := time.Now()
	conn.UpdatedAt = now

	query := `
		UPDATE platform_connections
		SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, conn.AccessToken, conn.RefreshToken, conn.ExpiresAt, now, conn.ID)
	if err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("connection not found: %s", conn.ID)
	}

	return nil
}

// TouchLastSynced records a sync completion timestamp.
func (r *ConnectionRepository) TouchLastSynced(id string, t time.Time) error {
	query := `UPDATE platform_connections SET last_synced_at = ?, updated_at = ? WHERE id = ?`

	if _, err := r.db.Exec(query, t, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update last_synced_at: %w", err)
	}

	return nil
}

// List retrieves connections matching the given criteria, ordered by sequence.
func (r *ConnectionRepository) List(criteria map[string]any) ([]*models.PlatformConnection, error) {
	query := `
		SELECT id, sequence, user_id, platform, access_token, refresh_token, expires_at, platform_user_id, active, last_synced_at, created_at, updated_at
		FROM platform_connections
		WHERE 1 = 1
	`

	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	if platform, ok := criteria["platform"].(string); ok && platform != "" {
		query += " AND platform = ?"
		args = append(args, platform)
	}
	if active, ok := criteria["active"].(bool); ok {
		query += " AND active = ?"
		args = append(args, active)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	var conns []*models.PlatformConnection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conns = append(conns, conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return conns, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnection(row rowScanner) (*models.PlatformConnection, error) {
	var (
		conn           models.PlatformConnection
		platform       string
		platformUserID sql.NullString
		lastSynced     sql.NullTime
	)

	err := row.Scan(
		&conn.ID, &conn.Sequence, &conn.UserID, &platform,
		&conn.AccessToken, &conn.RefreshToken, &conn.ExpiresAt, &platformUserID,
		&conn.Active, &lastSynced, &conn.CreatedAt, &conn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	conn.Platform = models.PlatformKind(platform)
	if platformUserID.Valid {
		conn.PlatformUserID = platformUserID.String
	}
	if lastSynced.Valid {
		t := lastSynced.Time
		conn.LastSyncedAt = &t
	}

	return &conn, nil
}
