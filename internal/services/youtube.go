// YouTube Data API implementation of [Platform]
//
// Response types based on https://developers.google.com/youtube/v3/docs
package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/backline/backline/internal/models"
	"golang.org/x/oauth2"
)

const (
	youtubeAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	youtubeTokenURL = "https://oauth2.googleapis.com/token"
	youtubeBaseURL  = "https://www.googleapis.com/youtube/v3"
)

// YouTubeChannelStatistics carries the numeric channel counters.
// The API reports them as strings.
type YouTubeChannelStatistics struct {
	ViewCount       string `json:"viewCount"`
	SubscriberCount string `json:"subscriberCount"`
	VideoCount      string `json:"videoCount"`
}

type youtubeRelatedPlaylists struct {
	Uploads string `json:"uploads"`
}

type youtubeContentDetails struct {
	RelatedPlaylists youtubeRelatedPlaylists `json:"relatedPlaylists"`
}

// YouTubeChannel represents one channel resource.
type YouTubeChannel struct {
	ID             string                   `json:"id"`
	Statistics     YouTubeChannelStatistics `json:"statistics"`
	ContentDetails youtubeContentDetails    `json:"contentDetails"`
}

// YouTubeChannelList represents a channels.list response.
type YouTubeChannelList struct {
	Items []YouTubeChannel `json:"items"`
}

type youtubeThumbnail struct {
	URL string `json:"url"`
}

type youtubePlaylistItemSnippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	ResourceID   struct {
		VideoID string `json:"videoId"`
	} `json:"resourceId"`
	Thumbnails struct {
		Default youtubeThumbnail `json:"default"`
	} `json:"thumbnails"`
}

// YouTubePlaylistItems represents a playlistItems.list response.
type YouTubePlaylistItems struct {
	Items []struct {
		Snippet youtubePlaylistItemSnippet `json:"snippet"`
	} `json:"items"`
}

// YouTubeService implements [Platform] for the YouTube Data API.
type YouTubeService struct {
	oauth *OAuthClient
	api   *apiClient
}

// NewYouTubeService creates a YouTube adapter with the given OAuth2 credentials.
func NewYouTubeService(credentials map[string]string, client *http.Client) (*YouTubeService, error) {
	oauth, err := NewOAuthClient(credentials, oauth2.Endpoint{
		AuthURL:  youtubeAuthURL,
		TokenURL: youtubeTokenURL,
	}, []string{"https://www.googleapis.com/auth/youtube.readonly"})
	if err != nil {
		return nil, err
	}

	return &YouTubeService{
		oauth: oauth,
		api:   newAPIClient(youtubeBaseURL, client),
	}, nil
}

func (y *YouTubeService) Name() models.PlatformKind { return models.PlatformYouTube }

func (y *YouTubeService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return y.oauth.Exchange(ctx, code)
}

func (y *YouTubeService) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return y.oauth.Refresh(ctx, refreshToken)
}

// Identity retrieves the channel id for the token's owner.
func (y *YouTubeService) Identity(ctx context.Context, accessToken string) (string, error) {
	var channels YouTubeChannelList
	if err := y.api.get(ctx, "/channels?part=id&mine=true", accessToken, &channels); err != nil {
		return "", err
	}
	if len(channels.Items) == 0 {
		return "", fmt.Errorf("no channel found for authenticated user")
	}
	return channels.Items[0].ID, nil
}

// Snapshot gathers channel statistics and the most recent uploads.
// YouTube does not report per-item popularity in the uploads listing, so the
// ranking carries the platform order with zero popularity.
func (y *YouTubeService) Snapshot(ctx context.Context, accessToken string) (*models.AnalyticsSnapshot, error) {
	snapshot := &models.AnalyticsSnapshot{Platform: models.PlatformYouTube}

	var channels YouTubeChannelList
	if err := y.api.get(ctx, "/channels?part=statistics,contentDetails&mine=true", accessToken, &channels); err != nil {
		return snapshot, nil
	}
	if len(channels.Items) == 0 {
		return snapshot, nil
	}

	channel := channels.Items[0]
	snapshot.PlatformUserID = channel.ID
	snapshot.Followers = parseCount(channel.Statistics.SubscriberCount)
	snapshot.Plays = parseCount(channel.Statistics.ViewCount)
	snapshot.SavedTracks = parseCount(channel.Statistics.VideoCount)

	if uploads := channel.ContentDetails.RelatedPlaylists.Uploads; uploads != "" {
		endpoint := fmt.Sprintf("/playlistItems?part=snippet&maxResults=%d&playlistId=%s", models.TopTrackLimit, uploads)
		var items YouTubePlaylistItems
		if err := y.api.get(ctx, endpoint, accessToken, &items); err == nil {
			for _, item := range items.Items {
				snapshot.TopTracks = append(snapshot.TopTracks, models.TrackStat{
					ID:         item.Snippet.ResourceID.VideoID,
					Name:       item.Snippet.Title,
					Artist:     item.Snippet.ChannelTitle,
					PreviewURL: item.Snippet.Thumbnails.Default.URL,
				})
			}
		}
	}

	return snapshot, nil
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
