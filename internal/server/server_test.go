package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/backline/backline/internal/models"
	"github.com/backline/backline/internal/notify"
	"github.com/backline/backline/internal/services"
	"github.com/backline/backline/internal/shared"
	"golang.org/x/oauth2"
)

type stubPlatform struct {
	name          models.PlatformKind
	exchangeCalls int
	exchangeErr   error
	token         *oauth2.Token
	identity      string
	identityErr   error
}

func (s *stubPlatform) Name() models.PlatformKind { return s.name }

func (s *stubPlatform) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	s.exchangeCalls++
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return s.token, nil
}

func (s *stubPlatform) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return nil, shared.ErrNotImplemented
}

func (s *stubPlatform) Identity(ctx context.Context, accessToken string) (string, error) {
	return s.identity, s.identityErr
}

func (s *stubPlatform) Snapshot(ctx context.Context, accessToken string) (*models.AnalyticsSnapshot, error) {
	return nil, shared.ErrNotImplemented
}

type stubWriter struct {
	calls int
	last  *models.PlatformConnection
	err   error
}

func (s *stubWriter) Upsert(conn *models.PlatformConnection) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	saved := *conn
	s.last = &saved
	return nil
}

func newCallbackRouter(platform *stubPlatform, store *stubWriter) *BasicRouter {
	registry := services.NewRegistry(&shared.Config{}, nil)
	if platform != nil {
		registry.Register(platform)
	}
	router := NewBasicRouter()
	router.Use(CORS())
	router.Handler(NewCallbackHandler(registry, store, shared.NewLogger(nil)))
	return router
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestCallbackHandler(t *testing.T) {
	t.Run("missing code or state rejected before any call", func(t *testing.T) {
		platform := &stubPlatform{name: models.PlatformSpotify}
		store := &stubWriter{}
		router := newCallbackRouter(platform, store)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback/spotify?code=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["error"] != "missing code or state" {
			t.Errorf("unexpected error message %v", body["error"])
		}
		if platform.exchangeCalls != 0 || store.calls != 0 {
			t.Errorf("expected no exchange or store calls, got %d/%d", platform.exchangeCalls, store.calls)
		}
	})

	t.Run("platform error param short-circuits the exchange", func(t *testing.T) {
		platform := &stubPlatform{name: models.PlatformSpotify}
		store := &stubWriter{}
		router := newCallbackRouter(platform, store)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback/spotify?error=access_denied", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if !strings.Contains(body["error"].(string), "access_denied") {
			t.Errorf("expected platform error echoed, got %v", body["error"])
		}
		if platform.exchangeCalls != 0 {
			t.Errorf("expected token endpoint untouched, got %d calls", platform.exchangeCalls)
		}
	})

	t.Run("successful GET callback upserts exactly one connection", func(t *testing.T) {
		platform := &stubPlatform{
			name:     models.PlatformSpotify,
			token:    &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)},
			identity: "spotify-user-9",
		}
		store := &stubWriter{}
		router := newCallbackRouter(platform, store)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback/spotify?code=abc&state=user-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["success"] != true {
			t.Errorf("expected success payload, got %v", body)
		}
		if store.calls != 1 {
			t.Fatalf("expected exactly one store write, got %d", store.calls)
		}
		if store.last.UserID != "user-1" || store.last.PlatformUserID != "spotify-user-9" || !store.last.Active {
			t.Errorf("unexpected connection %+v", store.last)
		}
	})

	t.Run("POST body is an equivalent parameter source", func(t *testing.T) {
		platform := &stubPlatform{
			name:  models.PlatformSpotify,
			token: &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)},
		}
		store := &stubWriter{}
		router := newCallbackRouter(platform, store)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/callback/spotify", strings.NewReader(`{"code": "abc", "state": "user-1"}`))
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if store.calls != 1 {
			t.Errorf("expected one store write, got %d", store.calls)
		}
	})

	t.Run("missing expiry defaults to one hour", func(t *testing.T) {
		platform := &stubPlatform{
			name:  models.PlatformSpotify,
			token: &oauth2.Token{AccessToken: "at", RefreshToken: "rt"},
		}
		store := &stubWriter{}
		router := newCallbackRouter(platform, store)

		before := time.Now()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback/spotify?code=abc&state=user-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		want := before.Add(defaultExpirySeconds * time.Second)
		if store.last.ExpiresAt.Before(want.Add(-time.Minute)) || store.last.ExpiresAt.After(want.Add(time.Minute)) {
			t.Errorf("expected expiry near %v, got %v", want, store.last.ExpiresAt)
		}
	})

	t.Run("identity failure does not fail the callback", func(t *testing.T) {
		platform := &stubPlatform{
			name:        models.PlatformSpotify,
			token:       &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)},
			identityErr: errors.New("profile endpoint down"),
		}
		store := &stubWriter{}
		router := newCallbackRouter(platform, store)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback/spotify?code=abc&state=user-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 despite identity failure, got %d", rec.Code)
		}
		if store.last.PlatformUserID != "" {
			t.Errorf("expected empty platform user id, got %q", store.last.PlatformUserID)
		}
	})

	t.Run("store failure is a server error", func(t *testing.T) {
		platform := &stubPlatform{
			name:  models.PlatformSpotify,
			token: &oauth2.Token{AccessToken: "at", Expiry: time.Now().Add(time.Hour)},
		}
		store := &stubWriter{err: errors.New("disk full")}
		router := newCallbackRouter(platform, store)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback/spotify?code=abc&state=user-1", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("unknown platform in the path is a client error", func(t *testing.T) {
		router := newCallbackRouter(&stubPlatform{name: models.PlatformSpotify}, &stubWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback/vinyl?code=abc&state=user-1", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("preflight is answered with CORS headers", func(t *testing.T) {
		router := newCallbackRouter(&stubPlatform{name: models.PlatformSpotify}, &stubWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/callback/spotify", nil))

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("expected wildcard origin header")
		}
	})
}

type stubSyncRunner struct {
	calls    int
	lastUser string
	lastKind models.PlatformKind
	snapshot *models.AnalyticsSnapshot
	err      error
}

func (s *stubSyncRunner) Sync(ctx context.Context, userID string, platform models.PlatformKind) (*models.AnalyticsSnapshot, error) {
	s.calls++
	s.lastUser = userID
	s.lastKind = platform
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func newSyncRouter(engine *stubSyncRunner) *BasicRouter {
	router := NewBasicRouter()
	router.Handler(NewSyncHandler(engine, shared.NewLogger(nil)))
	return router
}

func TestSyncHandler(t *testing.T) {
	t.Run("per-platform route takes the platform from the path", func(t *testing.T) {
		engine := &stubSyncRunner{snapshot: &models.AnalyticsSnapshot{Platform: models.PlatformSpotify, SyncedAt: time.Now()}}
		router := newSyncRouter(engine)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/spotify", strings.NewReader(`{"user_id": "user-1"}`)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if engine.lastUser != "user-1" || engine.lastKind != models.PlatformSpotify {
			t.Errorf("unexpected engine call %q/%q", engine.lastUser, engine.lastKind)
		}
	})

	t.Run("generic route reads the platform from the body", func(t *testing.T) {
		engine := &stubSyncRunner{snapshot: &models.AnalyticsSnapshot{Platform: models.PlatformYouTube, SyncedAt: time.Now()}}
		router := newSyncRouter(engine)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(`{"user_id": "user-1", "platform": "youtube"}`)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if engine.lastKind != models.PlatformYouTube {
			t.Errorf("expected youtube, got %q", engine.lastKind)
		}
	})

	t.Run("missing connection instructs the caller to connect first", func(t *testing.T) {
		engine := &stubSyncRunner{err: shared.ErrNotConnected}
		router := newSyncRouter(engine)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/spotify", strings.NewReader(`{"user_id": "user-1"}`)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if !strings.Contains(body["error"].(string), "connect your spotify account first") {
			t.Errorf("unexpected message %v", body["error"])
		}
	})

	t.Run("failed refresh instructs the caller to reconnect", func(t *testing.T) {
		engine := &stubSyncRunner{err: shared.ErrReconnectRequired}
		router := newSyncRouter(engine)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/spotify", strings.NewReader(`{"user_id": "user-1"}`)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if !strings.Contains(decodeBody(t, rec)["error"].(string), "reconnect") {
			t.Errorf("expected reconnect instruction")
		}
	})

	t.Run("missing user_id never reaches the engine", func(t *testing.T) {
		engine := &stubSyncRunner{}
		router := newSyncRouter(engine)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/spotify", strings.NewReader(`{}`)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if engine.calls != 0 {
			t.Errorf("expected no engine calls, got %d", engine.calls)
		}
	})
}

type stubDispatcher struct {
	calls int
	id    string
	err   error
}

func (s *stubDispatcher) Dispatch(ctx context.Context, event *notify.Event) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

func TestNotifyHandler(t *testing.T) {
	newRouter := func(d *stubDispatcher) *BasicRouter {
		router := NewBasicRouter()
		router.Handler(NewNotifyHandler(d, shared.NewLogger(nil)))
		return router
	}

	t.Run("returns the provider email id", func(t *testing.T) {
		dispatcher := &stubDispatcher{id: "em_7"}
		router := newRouter(dispatcher)

		rec := httptest.NewRecorder()
		body := `{"event": "announcement", "subject": "Hi", "body": "News"}`
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if decodeBody(t, rec)["emailId"] != "em_7" {
			t.Errorf("expected emailId em_7, got %s", rec.Body.String())
		}
	})

	t.Run("validation failure is a client error", func(t *testing.T) {
		dispatcher := &stubDispatcher{err: shared.ErrInvalidInput}
		router := newRouter(dispatcher)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(`{"event": "demo_reviewed"}`)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("provider failure is a server error with success false", func(t *testing.T) {
		dispatcher := &stubDispatcher{err: shared.ErrMailDelivery}
		router := newRouter(dispatcher)

		rec := httptest.NewRecorder()
		body := `{"event": "announcement", "subject": "Hi", "body": "News"}`
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(body)))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if decodeBody(t, rec)["success"] != false {
			t.Errorf("expected success false in body, got %s", rec.Body.String())
		}
	})
}

func TestHealthHandler(t *testing.T) {
	router := NewBasicRouter()
	router.Handler(NewHealthHandler(nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if decodeBody(t, rec)["status"] != "ok" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
