package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/backline/backline/internal/models"
	"github.com/backline/backline/internal/services"
	"github.com/backline/backline/internal/shared"
	"golang.org/x/oauth2"
)

type stubPlatform struct {
	name          models.PlatformKind
	refreshCalls  int
	snapshotCalls int
	refreshErr    error
	snapshotErr   error
	refreshToken  *oauth2.Token
	snapshot      *models.AnalyticsSnapshot
	seenToken     string
}

func (s *stubPlatform) Name() models.PlatformKind { return s.name }

func (s *stubPlatform) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return nil, shared.ErrNotImplemented
}

func (s *stubPlatform) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	s.refreshCalls++
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.refreshToken, nil
}

func (s *stubPlatform) Identity(ctx context.Context, accessToken string) (string, error) {
	return "", shared.ErrNotImplemented
}

func (s *stubPlatform) Snapshot(ctx context.Context, accessToken string) (*models.AnalyticsSnapshot, error) {
	s.snapshotCalls++
	s.seenToken = accessToken
	if s.snapshotErr != nil {
		return nil, s.snapshotErr
	}
	return s.snapshot, nil
}

type stubConnectionStore struct {
	conn        *models.PlatformConnection
	getErr      error
	saved       *models.PlatformConnection
	touchedID   string
	touchedAt   time.Time
	saveErr     error
	getCalls    int
	touchCalls  int
	savedTokens int
}

func (s *stubConnectionStore) GetActive(userID string, platform models.PlatformKind) (*models.PlatformConnection, error) {
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.conn, nil
}

func (s *stubConnectionStore) SaveTokens(conn *models.PlatformConnection) error {
	s.savedTokens++
	if s.saveErr != nil {
		return s.saveErr
	}
	saved := *conn
	s.saved = &saved
	return nil
}

func (s *stubConnectionStore) TouchLastSynced(id string, t time.Time) error {
	s.touchCalls++
	s.touchedID = id
	s.touchedAt = t
	return nil
}

type stubAnalyticsStore struct {
	tracks   []models.TrackStat
	syncedAt time.Time
	calls    int
	err      error
}

func (s *stubAnalyticsStore) UpsertTracks(userID string, platform models.PlatformKind, tracks []models.TrackStat, syncedAt time.Time) error {
	s.calls++
	s.tracks = tracks
	s.syncedAt = syncedAt
	return s.err
}

func newTestEngine(platform *stubPlatform, conns *stubConnectionStore, analytics *stubAnalyticsStore, now time.Time) *SyncEngine {
	registry := services.NewRegistry(&shared.Config{}, nil)
	registry.Register(platform)
	engine := NewSyncEngine(registry, conns, analytics, shared.NewLogger(nil))
	engine.now = func() time.Time { return now }
	return engine
}

func TestSyncEngine(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	freshConn := func() *models.PlatformConnection {
		return &models.PlatformConnection{
			ID:           "conn-1",
			UserID:       "user-1",
			Platform:     models.PlatformSpotify,
			AccessToken:  "valid-token",
			RefreshToken: "refresh-token",
			ExpiresAt:    now.Add(time.Hour),
			Active:       true,
		}
	}

	t.Run("syncs with valid token without refreshing", func(t *testing.T) {
		platform := &stubPlatform{
			name: models.PlatformSpotify,
			snapshot: &models.AnalyticsSnapshot{
				Platform:  models.PlatformSpotify,
				TopTracks: []models.TrackStat{{ID: "t1", Name: "Song", Popularity: 80}},
				Followers: 42,
			},
		}
		conns := &stubConnectionStore{conn: freshConn()}
		analytics := &stubAnalyticsStore{}
		engine := newTestEngine(platform, conns, analytics, now)

		snapshot, err := engine.Sync(context.Background(), "user-1", models.PlatformSpotify)
		if err != nil {
			t.Fatalf("expected sync to succeed, got %v", err)
		}

		if platform.refreshCalls != 0 {
			t.Errorf("expected no refresh, got %d", platform.refreshCalls)
		}
		if platform.seenToken != "valid-token" {
			t.Errorf("expected snapshot with stored token, got %q", platform.seenToken)
		}
		if !snapshot.SyncedAt.Equal(now) {
			t.Errorf("expected synced_at %v, got %v", now, snapshot.SyncedAt)
		}
		if analytics.calls != 1 || len(analytics.tracks) != 1 {
			t.Errorf("expected one track upsert, got %d calls with %d tracks", analytics.calls, len(analytics.tracks))
		}
		if conns.touchCalls != 1 || conns.touchedID != "conn-1" {
			t.Errorf("expected last_synced bump for conn-1, got %d calls for %q", conns.touchCalls, conns.touchedID)
		}
	})

	t.Run("expired token triggers exactly one refresh before fetch", func(t *testing.T) {
		conn := freshConn()
		conn.ExpiresAt = now.Add(-time.Minute)
		platform := &stubPlatform{
			name: models.PlatformSpotify,
			refreshToken: &oauth2.Token{
				AccessToken:  "new-token",
				RefreshToken: "new-refresh",
				Expiry:       now.Add(time.Hour),
			},
			snapshot: &models.AnalyticsSnapshot{Platform: models.PlatformSpotify},
		}
		conns := &stubConnectionStore{conn: conn}
		engine := newTestEngine(platform, conns, &stubAnalyticsStore{}, now)

		if _, err := engine.Sync(context.Background(), "user-1", models.PlatformSpotify); err != nil {
			t.Fatalf("expected sync to succeed, got %v", err)
		}

		if platform.refreshCalls != 1 {
			t.Errorf("expected exactly one refresh, got %d", platform.refreshCalls)
		}
		if platform.seenToken != "new-token" {
			t.Errorf("expected fetch with refreshed token, got %q", platform.seenToken)
		}
		if conns.saved == nil || conns.saved.AccessToken != "new-token" || conns.saved.RefreshToken != "new-refresh" {
			t.Errorf("expected refreshed tokens persisted, got %+v", conns.saved)
		}
	})

	t.Run("refresh without expiry defaults token lifetime", func(t *testing.T) {
		conn := freshConn()
		conn.ExpiresAt = now.Add(-time.Minute)
		platform := &stubPlatform{
			name:         models.PlatformSpotify,
			refreshToken: &oauth2.Token{AccessToken: "new-token", RefreshToken: "new-refresh"},
			snapshot:     &models.AnalyticsSnapshot{Platform: models.PlatformSpotify},
		}
		conns := &stubConnectionStore{conn: conn}
		engine := newTestEngine(platform, conns, &stubAnalyticsStore{}, now)

		if _, err := engine.Sync(context.Background(), "user-1", models.PlatformSpotify); err != nil {
			t.Fatalf("expected sync to succeed, got %v", err)
		}

		want := now.Add(defaultTokenLifetime)
		if conns.saved == nil || !conns.saved.ExpiresAt.Equal(want) {
			t.Errorf("expected default expiry %v, got %+v", want, conns.saved)
		}
	})

	t.Run("failed refresh requires reconnect", func(t *testing.T) {
		conn := freshConn()
		conn.ExpiresAt = now.Add(-time.Minute)
		platform := &stubPlatform{
			name:       models.PlatformSpotify,
			refreshErr: shared.ErrRefreshFailed,
		}
		conns := &stubConnectionStore{conn: conn}
		engine := newTestEngine(platform, conns, &stubAnalyticsStore{}, now)

		_, err := engine.Sync(context.Background(), "user-1", models.PlatformSpotify)
		if !errors.Is(err, shared.ErrReconnectRequired) {
			t.Fatalf("expected ErrReconnectRequired, got %v", err)
		}
		if platform.refreshCalls != 1 {
			t.Errorf("expected exactly one refresh attempt, got %d", platform.refreshCalls)
		}
		if platform.snapshotCalls != 0 {
			t.Errorf("expected no data fetch after failed refresh, got %d", platform.snapshotCalls)
		}
	})

	t.Run("no active connection makes no upstream calls", func(t *testing.T) {
		platform := &stubPlatform{name: models.PlatformSpotify}
		conns := &stubConnectionStore{getErr: shared.ErrNotConnected}
		engine := newTestEngine(platform, conns, &stubAnalyticsStore{}, now)

		_, err := engine.Sync(context.Background(), "user-1", models.PlatformSpotify)
		if !errors.Is(err, shared.ErrNotConnected) {
			t.Fatalf("expected ErrNotConnected, got %v", err)
		}
		if platform.refreshCalls != 0 || platform.snapshotCalls != 0 {
			t.Errorf("expected no upstream calls, got refresh=%d snapshot=%d", platform.refreshCalls, platform.snapshotCalls)
		}
	})

	t.Run("unsupported platform rejected before store lookup", func(t *testing.T) {
		platform := &stubPlatform{name: models.PlatformSpotify}
		conns := &stubConnectionStore{conn: freshConn()}
		engine := newTestEngine(platform, conns, &stubAnalyticsStore{}, now)

		_, err := engine.Sync(context.Background(), "user-1", models.PlatformKind("vinyl"))
		if !errors.Is(err, shared.ErrUnsupportedPlatform) {
			t.Fatalf("expected ErrUnsupportedPlatform, got %v", err)
		}
		if conns.getCalls != 0 {
			t.Errorf("expected no store lookup, got %d", conns.getCalls)
		}
	})

	t.Run("snapshot failure surfaces as api error", func(t *testing.T) {
		platform := &stubPlatform{
			name:        models.PlatformSpotify,
			snapshotErr: errors.New("upstream down"),
		}
		conns := &stubConnectionStore{conn: freshConn()}
		engine := newTestEngine(platform, conns, &stubAnalyticsStore{}, now)

		_, err := engine.Sync(context.Background(), "user-1", models.PlatformSpotify)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
	})
}
