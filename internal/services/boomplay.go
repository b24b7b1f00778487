// Boomplay implementation of [Platform]
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/backline/backline/internal/models"
	"golang.org/x/oauth2"
)

const (
	boomplayAuthURL  = "https://www.boomplay.com/oauth/authorize"
	boomplayTokenURL = "https://api.boomplay.com/oauth/token"
	boomplayBaseURL  = "https://api.boomplay.com/v1"
)

// BoomplayProfile represents the authenticated Boomplay artist profile.
type BoomplayProfile struct {
	Data struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		FansCount int64  `json:"fansCount"`
	} `json:"data"`
}

// BoomplaySong represents one song with play stats.
type BoomplaySong struct {
	SongID     string `json:"songID"`
	Name       string `json:"name"`
	ArtistName string `json:"artistName"`
	PlayCount  int64  `json:"playCount"`
	CoverURL   string `json:"coverUrl"`
}

// BoomplaySongs represents the artist songs listing envelope.
type BoomplaySongs struct {
	Data []BoomplaySong `json:"data"`
}

// BoomplayService implements [Platform] for the Boomplay open API.
type BoomplayService struct {
	oauth *OAuthClient
	api   *apiClient
}

// NewBoomplayService creates a Boomplay adapter with the given credentials.
func NewBoomplayService(credentials map[string]string, client *http.Client) (*BoomplayService, error) {
	oauth, err := NewOAuthClient(credentials, oauth2.Endpoint{
		AuthURL:  boomplayAuthURL,
		TokenURL: boomplayTokenURL,
	}, nil)
	if err != nil {
		return nil, err
	}

	return &BoomplayService{
		oauth: oauth,
		api:   newAPIClient(boomplayBaseURL, client),
	}, nil
}

func (b *BoomplayService) Name() models.PlatformKind { return models.PlatformBoomplay }

func (b *BoomplayService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return b.oauth.Exchange(ctx, code)
}

func (b *BoomplayService) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return b.oauth.Refresh(ctx, refreshToken)
}

// Identity retrieves the Boomplay profile id for the token's owner.
func (b *BoomplayService) Identity(ctx context.Context, accessToken string) (string, error) {
	var profile BoomplayProfile
	if err := b.api.get(ctx, "/me", accessToken, &profile); err != nil {
		return "", err
	}
	return profile.Data.ID, nil
}

// Snapshot gathers the artist profile and songs ranked by play count.
func (b *BoomplayService) Snapshot(ctx context.Context, accessToken string) (*models.AnalyticsSnapshot, error) {
	snapshot := &models.AnalyticsSnapshot{Platform: models.PlatformBoomplay}

	var profile BoomplayProfile
	if err := b.api.get(ctx, "/me", accessToken, &profile); err == nil {
		snapshot.PlatformUserID = profile.Data.ID
		snapshot.Followers = profile.Data.FansCount
	}

	var songs BoomplaySongs
	endpoint := fmt.Sprintf("/me/songs?limit=%d", models.TopTrackLimit)
	if err := b.api.get(ctx, endpoint, accessToken, &songs); err == nil {
		var stats []models.TrackStat
		for _, song := range songs.Data {
			snapshot.Plays += song.PlayCount
			stats = append(stats, models.TrackStat{
				ID:         song.SongID,
				Name:       song.Name,
				Artist:     song.ArtistName,
				Popularity: int(song.PlayCount),
				PreviewURL: song.CoverURL,
			})
		}
		snapshot.TopTracks = models.MergeTopTracks(models.TopTrackLimit, stats)
	}

	return snapshot, nil
}
