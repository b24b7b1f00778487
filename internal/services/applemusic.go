// Apple Music implementation of [Platform]
//
// Response types based on https://developer.apple.com/documentation/applemusicapi
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/backline/backline/internal/models"
	"golang.org/x/oauth2"
)

const (
	appleMusicAuthURL  = "https://appleid.apple.com/auth/authorize"
	appleMusicTokenURL = "https://appleid.apple.com/auth/token"
	appleMusicBaseURL  = "https://api.music.apple.com/v1"
)

type appleMusicAttributes struct {
	Name       string `json:"name"`
	ArtistName string `json:"artistName"`
}

type appleMusicResource struct {
	ID         string               `json:"id"`
	Attributes appleMusicAttributes `json:"attributes"`
}

// AppleMusicResponse represents the common data envelope.
type AppleMusicResponse struct {
	Data []appleMusicResource `json:"data"`
	Meta struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

// AppleMusicService implements [Platform] for the Apple Music API.
type AppleMusicService struct {
	oauth *OAuthClient
	api   *apiClient
}

// NewAppleMusicService creates an Apple Music adapter with the given credentials.
func NewAppleMusicService(credentials map[string]string, client *http.Client) (*AppleMusicService, error) {
	oauth, err := NewOAuthClient(credentials, oauth2.Endpoint{
		AuthURL:  appleMusicAuthURL,
		TokenURL: appleMusicTokenURL,
	}, nil)
	if err != nil {
		return nil, err
	}

	return &AppleMusicService{
		oauth: oauth,
		api:   newAPIClient(appleMusicBaseURL, client),
	}, nil
}

func (a *AppleMusicService) Name() models.PlatformKind { return models.PlatformAppleMusic }

func (a *AppleMusicService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return a.oauth.Exchange(ctx, code)
}

func (a *AppleMusicService) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return a.oauth.Refresh(ctx, refreshToken)
}

// Identity retrieves the user's storefront id, the closest stable identifier
// the API exposes for the token's owner.
func (a *AppleMusicService) Identity(ctx context.Context, accessToken string) (string, error) {
	var storefront AppleMusicResponse
	if err := a.api.get(ctx, "/me/storefront", accessToken, &storefront); err != nil {
		return "", err
	}
	if len(storefront.Data) == 0 {
		return "", fmt.Errorf("no storefront found for authenticated user")
	}
	return storefront.Data[0].ID, nil
}

// Snapshot gathers the library song count and the heavy-rotation listing.
// Apple Music reports no popularity score, so the ranking carries the
// platform's rotation order with zero popularity.
func (a *AppleMusicService) Snapshot(ctx context.Context, accessToken string) (*models.AnalyticsSnapshot, error) {
	snapshot := &models.AnalyticsSnapshot{Platform: models.PlatformAppleMusic}

	var library AppleMusicResponse
	if err := a.api.get(ctx, "/me/library/songs?limit=1", accessToken, &library); err == nil {
		snapshot.SavedTracks = library.Meta.Total
	}

	var rotation AppleMusicResponse
	endpoint := fmt.Sprintf("/me/history/heavy-rotation?limit=%d", models.TopTrackLimit)
	if err := a.api.get(ctx, endpoint, accessToken, &rotation); err == nil {
		for _, item := range rotation.Data {
			snapshot.TopTracks = append(snapshot.TopTracks, models.TrackStat{
				ID:     item.ID,
				Name:   item.Attributes.Name,
				Artist: item.Attributes.ArtistName,
			})
		}
	}

	return snapshot, nil
}
