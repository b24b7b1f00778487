package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/backline/backline/internal/models"
	"github.com/backline/backline/internal/services"
	"github.com/backline/backline/internal/shared"
	"github.com/charmbracelet/log"
)

// defaultTokenLifetime applies when a platform omits expires_in.
const defaultTokenLifetime = 3600 * time.Second

// ConnectionStore defines the connection persistence the engine needs.
// Implemented by repositories.ConnectionRepository.
type ConnectionStore interface {
	GetActive(userID string, platform models.PlatformKind) (*models.PlatformConnection, error)
	SaveTokens(conn *models.PlatformConnection) error
	TouchLastSynced(id string, t time.Time) error
}

// AnalyticsStore defines the snapshot persistence the engine needs.
// Implemented by repositories.AnalyticsRepository.
type AnalyticsStore interface {
	UpsertTracks(userID string, platform models.PlatformKind, tracks []models.TrackStat, syncedAt time.Time) error
}

// SyncEngine orchestrates analytics syncs across platform adapters.
type SyncEngine struct {
	platforms   *services.Registry
	connections ConnectionStore
	analytics   AnalyticsStore
	logger      *log.Logger
	now         func() time.Time
}

// NewSyncEngine creates a sync engine over the given registry and stores.
func NewSyncEngine(platforms *services.Registry, connections ConnectionStore, analytics AnalyticsStore, logger *log.Logger) *SyncEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SyncEngine{
		platforms:   platforms,
		connections: connections,
		analytics:   analytics,
		logger:      logger,
		now:         time.Now,
	}
}

// Sync runs one analytics sync for a (user, platform) pair.
//
// The returned snapshot is always best-effort complete: fields whose sub-call
// failed are zero-filled. The connection's last-synced timestamp is updated
// on completion regardless of partial failures.
func (e *SyncEngine) Sync(ctx context.Context, userID string, platform models.PlatformKind) (*models.AnalyticsSnapshot, error) {
	adapter, err := e.platforms.Get(platform)
	if err != nil {
		return nil, err
	}

	conn, err := e.connections.GetActive(userID, platform)
	if err != nil {
		return nil, err
	}

	if conn.TokenState(e.now()) == models.TokenNeedsRefresh {
		if err := e.refresh(ctx, adapter, conn); err != nil {
			return nil, err
		}
	}

	snapshot, err := adapter.Snapshot(ctx, conn.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	syncedAt := e.now()
	snapshot.SyncedAt = syncedAt
	if snapshot.PlatformUserID == "" {
		snapshot.PlatformUserID = conn.PlatformUserID
	}

	if err := e.analytics.UpsertTracks(userID, platform, snapshot.TopTracks, syncedAt); err != nil {
		// Persistence of stats is part of the sync contract; surface it.
		return nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}

	if err := e.connections.TouchLastSynced(conn.ID, syncedAt); err != nil {
		e.logger.Warn("failed to update last_synced_at", "connection", conn.ID, "error", err)
	}

	return snapshot, nil
}

// refresh performs the one-shot refresh-token exchange and persists the new
// credentials. Failure means the caller must reconnect; there are no retries.
func (e *SyncEngine) refresh(ctx context.Context, adapter services.Platform, conn *models.PlatformConnection) error {
	e.logger.Info("access token expired, refreshing", "user", conn.UserID, "platform", conn.Platform)

	token, err := adapter.Refresh(ctx, conn.RefreshToken)
	if err != nil {
		e.logger.Warn("token refresh failed", "user", conn.UserID, "platform", conn.Platform, "error", err)
		return fmt.Errorf("%w: %s", shared.ErrReconnectRequired, conn.Platform)
	}

	conn.AccessToken = token.AccessToken
	conn.RefreshToken = token.RefreshToken
	conn.ExpiresAt = token.Expiry
	if conn.ExpiresAt.IsZero() {
		conn.ExpiresAt = e.now().Add(defaultTokenLifetime)
	}

	if err := e.connections.SaveTokens(conn); err != nil {
		return fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	return nil
}
