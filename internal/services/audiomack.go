// Audiomack implementation of [Platform]
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/backline/backline/internal/models"
	"golang.org/x/oauth2"
)

const (
	audiomackAuthURL  = "https://audiomack.com/oauth/authenticate"
	audiomackTokenURL = "https://api.audiomack.com/v1/oauth/token"
	audiomackBaseURL  = "https://api.audiomack.com/v1"
)

// AudiomackUser represents the authenticated Audiomack artist profile.
type AudiomackUser struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	URLSlug        string `json:"url_slug"`
	FollowersCount int64  `json:"followers_count"`
}

type audiomackStats struct {
	Plays     int64 `json:"plays-raw"`
	Favorites int64 `json:"favorites-raw"`
}

// AudiomackUpload represents one uploaded song with play stats.
type AudiomackUpload struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Artist string         `json:"artist"`
	Image  string         `json:"image"`
	Stats  audiomackStats `json:"stats"`
}

// AudiomackUploads represents the uploads listing envelope.
type AudiomackUploads struct {
	Results []AudiomackUpload `json:"results"`
}

// AudiomackService implements [Platform] for the Audiomack API.
type AudiomackService struct {
	oauth *OAuthClient
	api   *apiClient
}

// NewAudiomackService creates an Audiomack adapter with the given credentials.
func NewAudiomackService(credentials map[string]string, client *http.Client) (*AudiomackService, error) {
	oauth, err := NewOAuthClient(credentials, oauth2.Endpoint{
		AuthURL:  audiomackAuthURL,
		TokenURL: audiomackTokenURL,
	}, nil)
	if err != nil {
		return nil, err
	}

	return &AudiomackService{
		oauth: oauth,
		api:   newAPIClient(audiomackBaseURL, client),
	}, nil
}

func (a *AudiomackService) Name() models.PlatformKind { return models.PlatformAudiomack }

func (a *AudiomackService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return a.oauth.Exchange(ctx, code)
}

func (a *AudiomackService) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return a.oauth.Refresh(ctx, refreshToken)
}

// Identity retrieves the artist slug for the token's owner.
func (a *AudiomackService) Identity(ctx context.Context, accessToken string) (string, error) {
	var user AudiomackUser
	if err := a.api.get(ctx, "/user", accessToken, &user); err != nil {
		return "", err
	}
	if user.URLSlug != "" {
		return user.URLSlug, nil
	}
	return user.ID, nil
}

// Snapshot gathers the artist profile and uploads ranked by play count.
func (a *AudiomackService) Snapshot(ctx context.Context, accessToken string) (*models.AnalyticsSnapshot, error) {
	snapshot := &models.AnalyticsSnapshot{Platform: models.PlatformAudiomack}

	var user AudiomackUser
	if err := a.api.get(ctx, "/user", accessToken, &user); err == nil {
		snapshot.PlatformUserID = user.URLSlug
		snapshot.Followers = user.FollowersCount
	}

	var uploads AudiomackUploads
	endpoint := fmt.Sprintf("/user/uploads?limit=%d", models.TopTrackLimit)
	if err := a.api.get(ctx, endpoint, accessToken, &uploads); err == nil {
		var stats []models.TrackStat
		for _, upload := range uploads.Results {
			snapshot.Plays += upload.Stats.Plays
			stats = append(stats, models.TrackStat{
				ID:         upload.ID,
				Name:       upload.Title,
				Artist:     upload.Artist,
				Popularity: int(upload.Stats.Plays),
				PreviewURL: upload.Image,
			})
		}
		snapshot.TopTracks = models.MergeTopTracks(models.TopTrackLimit, stats)
	}

	return snapshot, nil
}
