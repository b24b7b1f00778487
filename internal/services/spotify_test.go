package services

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	tu "github.com/backline/backline/internal/testing"
)

func jsonResponse(body string) func() *http.Response {
	return func() *http.Response {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(body)),
		}
	}
}

func newTestSpotify(t *testing.T, transport http.RoundTripper) *SpotifyService {
	t.Helper()
	service, err := NewSpotifyService(testCredentials(), &http.Client{Transport: transport})
	if err != nil {
		t.Fatalf("failed to create spotify service: %v", err)
	}
	return service
}

func TestSpotifyService(t *testing.T) {
	t.Run("Identity returns the user id", func(t *testing.T) {
		transport := &tu.RouteRoundTripper{Routes: map[string]func() *http.Response{
			"/v1/me": jsonResponse(`{"id": "spotify-9", "display_name": "Ada"}`),
		}}
		service := newTestSpotify(t, transport)

		id, err := service.Identity(context.Background(), "token")
		if err != nil {
			t.Fatalf("expected identity lookup to succeed, got %v", err)
		}
		if id != "spotify-9" {
			t.Errorf("expected spotify-9, got %q", id)
		}
	})

	t.Run("Snapshot", func(t *testing.T) {
		t.Run("merges top tracks with playlist tracks", func(t *testing.T) {
			transport := &tu.RouteRoundTripper{Routes: map[string]func() *http.Response{
				"/v1/me": jsonResponse(`{"id": "spotify-9", "followers": {"total": 321}}`),
				"/v1/me/top/tracks": jsonResponse(`{"items": [
					{"id": "t1", "name": "Night Drive", "artists": [{"name": "Ada"}], "popularity": 40}
				]}`),
				"/v1/me/tracks":    jsonResponse(`{"items": [], "total": 17}`),
				"/v1/me/playlists": jsonResponse(`{"items": [{"id": "p1", "name": "Mix"}]}`),
				"/v1/playlists/p1/tracks": jsonResponse(`{"items": [
					{"track": {"id": "t1", "name": "Night Drive", "artists": [{"name": "Ada"}], "popularity": 85}},
					{"track": {"id": "t2", "name": "Daybreak", "artists": [{"name": "Grace"}], "popularity": 50}}
				]}`),
			}}
			service := newTestSpotify(t, transport)

			snapshot, err := service.Snapshot(context.Background(), "token")
			if err != nil {
				t.Fatalf("expected snapshot to succeed, got %v", err)
			}

			if snapshot.Followers != 321 {
				t.Errorf("expected 321 followers, got %d", snapshot.Followers)
			}
			if snapshot.SavedTracks != 17 {
				t.Errorf("expected 17 saved tracks, got %d", snapshot.SavedTracks)
			}
			if len(snapshot.TopTracks) != 2 {
				t.Fatalf("expected 2 deduplicated tracks, got %d", len(snapshot.TopTracks))
			}
			// The playlist copy of t1 carries the higher popularity.
			if snapshot.TopTracks[0].ID != "t1" || snapshot.TopTracks[0].Popularity != 85 {
				t.Errorf("expected t1 at 85 first, got %+v", snapshot.TopTracks[0])
			}
			if snapshot.TopTracks[1].ID != "t2" {
				t.Errorf("expected t2 second, got %+v", snapshot.TopTracks[1])
			}
		})

		t.Run("failed sub-calls zero-fill their fields", func(t *testing.T) {
			// Only the profile endpoint answers; everything else 404s.
			transport := &tu.RouteRoundTripper{Routes: map[string]func() *http.Response{
				"/v1/me": jsonResponse(`{"id": "spotify-9", "followers": {"total": 5}}`),
			}}
			service := newTestSpotify(t, transport)

			snapshot, err := service.Snapshot(context.Background(), "token")
			if err != nil {
				t.Fatalf("expected snapshot to succeed despite sub-call failures, got %v", err)
			}
			if snapshot.Followers != 5 {
				t.Errorf("expected followers from the one working call, got %d", snapshot.Followers)
			}
			if snapshot.SavedTracks != 0 || len(snapshot.TopTracks) != 0 {
				t.Errorf("expected zero-filled fields, got %+v", snapshot)
			}
		})
	})
}

// countingTransport records per-path request counts on top of routed responses.
type countingTransport struct {
	routes map[string]func() *http.Response
	counts map[string]int
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[r.URL.Path]++
	if build, ok := c.routes[r.URL.Path]; ok {
		return build(), nil
	}
	return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(`{"items": []}`))}, nil
}

func TestSpotifyPlaylistFanOutCap(t *testing.T) {
	var playlists []string
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10", "p11", "p12"} {
		playlists = append(playlists, `{"id": "`+id+`", "name": "`+id+`"}`)
	}
	transport := &countingTransport{routes: map[string]func() *http.Response{
		"/v1/me/playlists": jsonResponse(`{"items": [` + strings.Join(playlists, ",") + `]}`),
	}}
	service := newTestSpotify(t, transport)

	if _, err := service.Snapshot(context.Background(), "token"); err != nil {
		t.Fatalf("expected snapshot to succeed, got %v", err)
	}

	fetched := 0
	for path := range transport.counts {
		if strings.HasPrefix(path, "/v1/playlists/") {
			fetched++
		}
	}
	if fetched != playlistFanOutLimit {
		t.Errorf("expected fan-out capped at %d playlists, got %d", playlistFanOutLimit, fetched)
	}
}
