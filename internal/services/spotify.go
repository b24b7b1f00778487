// Spotify implementation of [Platform]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/backline/backline/internal/models"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// playlistFanOutLimit caps the number of secondary per-playlist requests
// during a sync, bounding latency and upstream rate-limit exposure.
const playlistFanOutLimit = 10

type spotifyFollowers struct {
	Total int64 `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string           `json:"id"`
	DisplayName string           `json:"display_name"`
	Email       string           `json:"email"`
	Followers   spotifyFollowers `json:"followers"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []spotifyArtist `json:"artists"`
	Popularity int             `json:"popularity"`
	PreviewURL string          `json:"preview_url"`
}

// SpotifyPaginatedTracks represents a paginated response of top tracks.
type SpotifyPaginatedTracks struct {
	Items []SpotifyTrack `json:"items"`
	Total int64          `json:"total"`
}

type spotifySimplePlaylist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items []spotifySimplePlaylist `json:"items"`
	Total int64                   `json:"total"`
}

type spotifyPlaylistTrack struct {
	Track SpotifyTrack `json:"track"`
}

// SpotifyPlaylistTracks represents the tracks page of one playlist.
type SpotifyPlaylistTracks struct {
	Items []spotifyPlaylistTrack `json:"items"`
}

// SpotifyService implements [Platform] for the Spotify Web API.
type SpotifyService struct {
	oauth *OAuthClient
	api   *apiClient
}

// NewSpotifyService creates a Spotify adapter with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, client *http.Client) (*SpotifyService, error) {
	oauth, err := NewOAuthClient(credentials, oauth2.Endpoint{
		AuthURL:  spotifyAuthURL,
		TokenURL: spotifyTokenURL,
	}, []string{
		"user-read-private",
		"user-read-email",
		"user-top-read",
		"user-library-read",
		"playlist-read-private",
	})
	if err != nil {
		return nil, err
	}

	return &SpotifyService{
		oauth: oauth,
		api:   newAPIClient(spotifyBaseURL, client),
	}, nil
}

func (s *SpotifyService) Name() models.PlatformKind { return models.PlatformSpotify }

func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return s.oauth.Exchange(ctx, code)
}

func (s *SpotifyService) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return s.oauth.Refresh(ctx, refreshToken)
}

// Identity retrieves the Spotify user id for the token's owner.
func (s *SpotifyService) Identity(ctx context.Context, accessToken string) (string, error) {
	var user SpotifyUser
	if err := s.api.get(ctx, "/me", accessToken, &user); err != nil {
		return "", err
	}
	return user.ID, nil
}

// Snapshot gathers top tracks, follower and saved-track counts, and the
// playlist-reconciled top-songs ranking. Each sub-call is independent; a
// failure zero-fills that field rather than aborting the sync.
func (s *SpotifyService) Snapshot(ctx context.Context, accessToken string) (*models.AnalyticsSnapshot, error) {
	snapshot := &models.AnalyticsSnapshot{Platform: models.PlatformSpotify}

	var user SpotifyUser
	if err := s.api.get(ctx, "/me", accessToken, &user); err == nil {
		snapshot.PlatformUserID = user.ID
		snapshot.Followers = user.Followers.Total
	}

	var top SpotifyPaginatedTracks
	var topStats []models.TrackStat
	if err := s.api.get(ctx, fmt.Sprintf("/me/top/tracks?limit=%d", models.TopTrackLimit), accessToken, &top); err == nil {
		topStats = trackStats(top.Items)
	}

	var saved SpotifyPaginatedTracks
	if err := s.api.get(ctx, "/me/tracks?limit=1", accessToken, &saved); err == nil {
		snapshot.SavedTracks = saved.Total
	}

	snapshot.TopTracks = models.MergeTopTracks(models.TopTrackLimit, topStats, s.playlistTracks(ctx, accessToken))

	return snapshot, nil
}

// playlistTracks flattens tracks from the user's first playlists into stats.
// Fan-out is capped at [playlistFanOutLimit] playlists.
func (s *SpotifyService) playlistTracks(ctx context.Context, accessToken string) []models.TrackStat {
	var playlists SpotifyPaginatedPlaylists
	if err := s.api.get(ctx, "/me/playlists?limit=50", accessToken, &playlists); err != nil {
		return nil
	}

	items := playlists.Items
	if len(items) > playlistFanOutLimit {
		items = items[:playlistFanOutLimit]
	}

	var stats []models.TrackStat
	for _, playlist := range items {
		var page SpotifyPlaylistTracks
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=50", playlist.ID)
		if err := s.api.get(ctx, endpoint, accessToken, &page); err != nil {
			continue
		}
		for _, item := range page.Items {
			stats = append(stats, trackStat(item.Track))
		}
	}

	return stats
}

func trackStat(t SpotifyTrack) models.TrackStat {
	stat := models.TrackStat{
		ID:         t.ID,
		Name:       t.Name,
		Popularity: t.Popularity,
		PreviewURL: t.PreviewURL,
	}
	if len(t.Artists) > 0 {
		stat.Artist = t.Artists[0].Name
	}
	return stat
}

func trackStats(tracks []SpotifyTrack) []models.TrackStat {
	stats := make([]models.TrackStat, len(tracks))
	for i, t := range tracks {
		stats[i] = trackStat(t)
	}
	return stats
}
